package cmd

import (
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahuang11/landsat-ml-cookbook/catalog"
	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

const sampleEPSG = 32611 // UTM 11N, the zone Walker Lake falls in

var sampleLakeShrink float64

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample [dir]",
	Short: "Write a synthetic sample catalog for offline runs",
	Long: `Generate two small lake scenes on different native grids and
	resolutions, plus a catalog file declaring them, so the regrid pipeline
	can run without network access or credentials:

	./landsat-ml sample data
	./landsat-ml regrid lake_1988 lake_2017 --catalog data/catalog.yaml

	The lake shrinks between the two scenes, so the NDVI difference shows a
	ring of emerged lakebed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()
		dir := "data"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := runSample(dir); err != nil {
			logrus.Fatal(err)
		}
	},
}

func runSample(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Two acquisitions of the same lake on deliberately mismatched grids:
	// the 1988 scene at 60 m, the 2017 scene at 40 m and offset by 20 m.
	early := syntheticLakeScene(346930, 4278530, 60, 150, 2700)
	late := syntheticLakeScene(346950, 4278550, 40, 225, 2700*(1-sampleLakeShrink))

	if err := catalog.WriteSNP(early, filepath.Join(dir, "lake_1988.snp")); err != nil {
		return err
	}
	if err := catalog.WriteSNP(late, filepath.Join(dir, "lake_2017.snp")); err != nil {
		return err
	}

	sources := map[string]catalog.Source{
		"lake_1988": {
			Driver:      "snp",
			Description: "Synthetic 1988-style lake scene, 60 m grid",
			Args:        catalog.SourceArgs{URLPath: "lake_1988.snp"},
		},
		"lake_2017": {
			Driver:      "snp",
			Description: "Synthetic 2017-style lake scene, 40 m grid, shrunken lake",
			Args:        catalog.SourceArgs{URLPath: "lake_2017.snp"},
		},
	}
	metadata := map[string]string{
		"description": "Synthetic lake scenes for the regrid pipeline",
	}
	if err := catalog.WriteLocal(filepath.Join(dir, "catalog.yaml"), sources, metadata); err != nil {
		return err
	}
	logrus.Infof("wrote sample catalog to %s", filepath.Join(dir, "catalog.yaml"))
	return nil
}

// syntheticLakeScene builds a nir/red scene with a circular lake in the
// middle of the grid's coverage. Water reflects low in both bands with nir
// below red, so its NDVI comes out negative; the surrounding land carries a
// gentle deterministic texture and a strongly positive NDVI.
func syntheticLakeScene(x0, y0, res float64, size int, lakeRadius float64) *raster.Raster {
	xs := make([]float64, size)
	ys := make([]float64, size)
	for i := 0; i < size; i++ {
		xs[i] = x0 + float64(i)*res
		ys[i] = y0 + float64(i)*res
	}
	lakeX := 351400.0
	lakeY := 4283000.0

	nir := make([]float64, size*size)
	red := make([]float64, size*size)
	for iy := 0; iy < size; iy++ {
		for ix := 0; ix < size; ix++ {
			x, y := xs[ix], ys[iy]
			i := iy*size + ix
			if math.Hypot(x-lakeX, y-lakeY) < lakeRadius {
				nir[i] = 0.03
				red[i] = 0.06
				continue
			}
			nir[i] = 0.35 + 0.04*math.Sin(x/700)*math.Cos(y/600)
			red[i] = 0.085 + 0.015*math.Sin(x/450)
		}
	}

	r, err := raster.New([]string{"nir", "red"}, xs, ys, [][]float64{nir, red}, sampleEPSG)
	if err != nil {
		// The shape is fixed above, so this only trips on a broken edit.
		panic(err)
	}
	return r
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().Float64Var(&sampleLakeShrink, "shrink", 0.25, "Fraction of the lake radius lost between the two scenes")
	err := viper.BindPFlag("sample.shrink", sampleCmd.Flags().Lookup("shrink"))
	if err != nil {
		logrus.Exit(1)
	}
}
