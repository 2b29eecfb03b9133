package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahuang11/landsat-ml-cookbook/catalog"
	"github.com/ahuang11/landsat-ml-cookbook/compute"
	"github.com/ahuang11/landsat-ml-cookbook/raster"
	"github.com/ahuang11/landsat-ml-cookbook/regrid"
	"github.com/ahuang11/landsat-ml-cookbook/render"
)

var catalogPath string
var nirBand string
var redBand string
var regridLon float64
var regridLat float64
var tapPoint string
var roiBuffer float64
var gridRes float64
var coarseRes float64
var regridAgg string
var regridWorkers int
var regridOut string
var regridSave string
var regridCmap string
var regridVmin float64
var regridVmax float64

// regridCmd represents the regrid command
var regridCmd = &cobra.Command{
	Use:   "regrid [dataset-a] [dataset-b]",
	Short: "Resample two scenes onto a shared grid and difference their NDVI",
	Long: `Load two scenes from a local catalog, compute NDVI for each, and
	interpolate both onto a uniform grid covering the region of interest so
	the time points become comparable cell-for-cell. Subtracting rasters on
	their native grids silently shrinks the result to whatever coordinates
	happen to match; regridding first is what makes a full-size difference
	possible.

	The region of interest is centered either on --lon/--lat (transformed
	into the scene's reference system) or on --tap "x,y" when the point is
	already in that system, e.g. captured from a rendered image.

	Options:
		--catalog:	Local catalog file declaring the datasets.
		--res:			Target grid resolution in CRS units.
		--coarse:		Optional coarser resolution to bin the difference into.
		--agg:			Aggregation for coarse bins, choose from: mean, sum, max, min.
		--out:			PNG to render the difference to. Empty skips rendering.
		--save:			Write the regridded collection to a .snp or .tif file.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()
		if err := runRegrid(args[0], args[1]); err != nil {
			logrus.Fatal(err)
		}
	},
}

func runRegrid(nameA, nameB string) error {
	cat, err := catalog.OpenLocal(catalogPath)
	if err != nil {
		return err
	}
	sceneA, err := cat.Load(nameA)
	if err != nil {
		return err
	}
	sceneB, err := cat.Load(nameB)
	if err != nil {
		return err
	}
	logrus.Infof("loaded %s (%dx%d) and %s (%dx%d)",
		nameA, sceneA.Width(), sceneA.Height(), nameB, sceneB.Width(), sceneB.Height())

	ndviA, err := raster.NDVI(sceneA, nirBand, redBand)
	if err != nil {
		return err
	}
	ndviB, err := raster.NDVI(sceneB, nirBand, redBand)
	if err != nil {
		return err
	}

	cx, cy, err := roiCenter(sceneA.EPSG)
	if err != nil {
		return err
	}
	roi := regrid.ROI{X: cx, Y: cy, Buffer: roiBuffer}
	grid, err := regrid.GridFromROI(roi, gridRes)
	if err != nil {
		return err
	}
	logrus.Infof("target grid %dx%d at res %v centered on (%.1f, %.1f)",
		len(grid.X), len(grid.Y), gridRes, cx, cy)

	sess := compute.NewSession(compute.Opts{Workers: regridWorkers})
	bar := progressbar.Default(int64(2*len(grid.Y)), "interpolating")
	sess.Progress = func(completed, total int) {
		_ = bar.Add(1)
	}
	interpA, err := regrid.Interpolate(sess, ndviA, grid)
	if err != nil {
		return err
	}
	interpB, err := regrid.Interpolate(sess, ndviB, grid)
	if err != nil {
		return err
	}
	sess.Progress = nil
	_ = bar.Finish()

	change, err := raster.Subtract(interpB, interpA)
	if err != nil {
		return err
	}
	change.Bands[0] = "change"
	combined, err := raster.Combine(
		[]string{nameA, nameB, "change"},
		[]*raster.Raster{interpA, interpB, change},
	)
	if err != nil {
		return err
	}

	if coarseRes > 0 {
		coarse, err := regrid.GridFromROI(roi, coarseRes)
		if err != nil {
			return err
		}
		change, err = regrid.Downsample(change, coarse.X, coarse.Y, chooseAggFunc(regridAgg))
		if err != nil {
			return err
		}
		logrus.Infof("downsampled change to %dx%d", change.Width(), change.Height())
	}

	if regridSave != "" {
		if err := saveRaster(combined, regridSave); err != nil {
			return err
		}
	}
	if regridOut != "" {
		opts := render.LayerOptions{
			Band:     "change",
			Colormap: regridCmap,
			Min:      regridVmin,
			Max:      regridVmax,
		}
		if err := render.SavePNG(change, opts, regridOut); err != nil {
			return err
		}
	}
	return nil
}

// roiCenter resolves the region-of-interest center: a tapped point is
// already in the raster's reference system, a lon/lat pair is transformed
// into it.
func roiCenter(epsg int) (float64, float64, error) {
	if tapPoint != "" {
		stream := render.NewTapStream()
		parts := strings.Split(tapPoint, ",")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("tap point must be \"x,y\", got %q", tapPoint)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("tap point x: %w", err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("tap point y: %w", err)
		}
		stream.Tap(x, y)
		p, _ := stream.Last()
		return p.X, p.Y, nil
	}
	return regrid.PointFromLonLat(regridLon, regridLat, epsg)
}

func chooseAggFunc(funcFlag string) raster.AggFunc {
	switch funcFlag {
	case "mean":
		return raster.Mean
	case "sum":
		return raster.Sum
	case "max":
		return raster.Max
	case "min":
		return raster.Min
	default:
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return raster.Mean
	}
}

// saveRaster picks the writer from the file extension.
func saveRaster(r *raster.Raster, path string) error {
	switch filepath.Ext(path) {
	case ".snp":
		return catalog.WriteSNP(r, path)
	case ".tif", ".tiff":
		return catalog.WriteGeoTIFF(r, path)
	default:
		return fmt.Errorf("unsupported output extension %q, use .snp or .tif", filepath.Ext(path))
	}
}

func init() {
	rootCmd.AddCommand(regridCmd)

	regridCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "data/catalog.yaml", "Local catalog file declaring the datasets")
	err := viper.BindPFlag("regrid.catalog", regridCmd.Flags().Lookup("catalog"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVar(&nirBand, "nir", "nir", "Name of the near-infrared band")
	err = viper.BindPFlag("regrid.nir", regridCmd.Flags().Lookup("nir"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVar(&redBand, "red", "red", "Name of the red band")
	err = viper.BindPFlag("regrid.red", regridCmd.Flags().Lookup("red"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64Var(&regridLon, "lon", -118.71, "Region-of-interest center longitude")
	err = viper.BindPFlag("regrid.lon", regridCmd.Flags().Lookup("lon"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64Var(&regridLat, "lat", 38.69, "Region-of-interest center latitude")
	err = viper.BindPFlag("regrid.lat", regridCmd.Flags().Lookup("lat"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVar(&tapPoint, "tap", "", "Center as \"x,y\" already in the scene's reference system")
	err = viper.BindPFlag("regrid.tap", regridCmd.Flags().Lookup("tap"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64VarP(&roiBuffer, "buffer", "b", 3000, "Buffer around the center in CRS units")
	err = viper.BindPFlag("regrid.buffer", regridCmd.Flags().Lookup("buffer"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64VarP(&gridRes, "res", "r", 60, "Target grid resolution in CRS units")
	err = viper.BindPFlag("regrid.res", regridCmd.Flags().Lookup("res"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64Var(&coarseRes, "coarse", 0, "Coarser resolution to bin the difference into, 0 to skip")
	err = viper.BindPFlag("regrid.coarse", regridCmd.Flags().Lookup("coarse"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVarP(&regridAgg, "agg", "a", "mean", "Function to use when aggregating coarse bins, choose from: mean, sum, max, min")
	err = viper.BindPFlag("regrid.agg", regridCmd.Flags().Lookup("agg"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().IntVarP(&regridWorkers, "numWorkers", "n", 8, "Number of workers to spawn for parallel processing")
	err = viper.BindPFlag("regrid.numWorkers", regridCmd.Flags().Lookup("numWorkers"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVarP(&regridOut, "out", "o", "ndvi_change.png", "PNG to render the difference to, empty to skip")
	err = viper.BindPFlag("regrid.out", regridCmd.Flags().Lookup("out"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVar(&regridSave, "save", "", "Write the regridded collection to a .snp or .tif file")
	err = viper.BindPFlag("regrid.save", regridCmd.Flags().Lookup("save"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().StringVar(&regridCmap, "cmap", "rdbu", "Colormap for the rendered difference")
	err = viper.BindPFlag("regrid.cmap", regridCmd.Flags().Lookup("cmap"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64Var(&regridVmin, "vmin", 0, "Lower bound of the rendered value range, 0/0 uses the data range")
	err = viper.BindPFlag("regrid.vmin", regridCmd.Flags().Lookup("vmin"))
	if err != nil {
		logrus.Exit(1)
	}

	regridCmd.Flags().Float64Var(&regridVmax, "vmax", 0, "Upper bound of the rendered value range, 0/0 uses the data range")
	err = viper.BindPFlag("regrid.vmax", regridCmd.Flags().Lookup("vmax"))
	if err != nil {
		logrus.Exit(1)
	}
}
