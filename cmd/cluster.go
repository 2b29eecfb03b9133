package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahuang11/landsat-ml-cookbook/catalog"
	"github.com/ahuang11/landsat-ml-cookbook/cluster"
	"github.com/ahuang11/landsat-ml-cookbook/compute"
	"github.com/ahuang11/landsat-ml-cookbook/raster"
	"github.com/ahuang11/landsat-ml-cookbook/render"
	"github.com/ahuang11/landsat-ml-cookbook/samplesio"
)

var apiURL string
var clusterLon float64
var clusterLat float64
var searchMargin float64
var collection string
var dateA string
var platformA string
var dateB string
var platformB string
var maxCloud float64
var searchLimit int
var sceneBands []string
var numClusters int
var clusterSeed int64
var rbfGamma float64
var kmeansMaxIter int
var waterA int
var waterB int
var cacheDir string
var exportDir string
var exportFormat string
var exportSamples bool
var renderDir string
var clusterCmap string
var clusterWorkers int

// clusterCmd represents the cluster command
var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster two scenes by spectral similarity and difference their water masks",
	Long: `Search a STAC catalog for one scene per time point, group each
	scene's pixels by spectral similarity and rebuild the cluster labels
	into images. Which label lands on water is arbitrary and differs
	between independent fits, so the first run usually exports the label
	images for inspection; a second run with --waterA/--waterB masks the
	water cluster in each scene and differences the masks.

	Options:
		--api:			STAC API root. Empty reads STAC_API_URL, then the
								Landsat collection-2 endpoint.
		--dateA/--dateB:				ISO datetime ranges, "start/end".
		--platformA/--platformB:	Platform per time point, e.g. LANDSAT_5.
		--waterA/--waterB:				Water cluster label per time point, -1 to skip
								the mask step.
		--exportDir:	Write per-scene label files here. Empty skips.
		--renderDir:	Write per-scene label PNGs here. Empty skips.`,
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()
		if err := runCluster(); err != nil {
			logrus.Fatal(err)
		}
	},
}

func runCluster() error {
	api := apiURL
	if api == "" {
		api = os.Getenv("STAC_API_URL")
	}
	client := catalog.NewClient(api)
	bbox := catalog.SearchBBox(clusterLon, clusterLat, searchMargin)

	// One session serves both fits; usage is strictly sequential.
	sess := compute.NewSession(compute.Opts{Workers: clusterWorkers})

	queries := []struct {
		datetime string
		platform string
	}{
		{dateA, platformA},
		{dateB, platformB},
	}
	labelRasters := make([]*raster.Raster, len(queries))
	for i, q := range queries {
		items, err := client.Search(catalog.SearchParams{
			BBox:          bbox,
			Datetime:      q.datetime,
			Collections:   []string{collection},
			Platform:      q.platform,
			MaxCloudCover: maxCloud,
			Limit:         searchLimit,
		})
		if err != nil {
			return err
		}
		covering := catalog.FilterCovering(items, clusterLon, clusterLat)
		if len(covering) == 0 {
			return fmt.Errorf("no %s scenes cover (%v, %v) in %s", q.platform, clusterLon, clusterLat, q.datetime)
		}
		item := covering[0]
		logrus.Infof("selected scene %s (%s, %.1f%% cloud)", item.ID, item.Properties.Datetime, item.Properties.CloudCover)

		labels, err := clusterScene(sess, client, item)
		if err != nil {
			return err
		}
		labelRasters[i] = labels
	}

	if waterA < 0 || waterB < 0 {
		logrus.Info("no water labels supplied; inspect the label outputs, then re-run with --waterA/--waterB to difference the masks")
		return nil
	}
	maskA, err := raster.MaskLabel(labelRasters[0], waterA)
	if err != nil {
		return err
	}
	maskB, err := raster.MaskLabel(labelRasters[1], waterB)
	if err != nil {
		return err
	}
	change, err := raster.Subtract(maskB, maskA)
	if err != nil {
		return err
	}
	change.Bands[0] = "water_change"
	if renderDir != "" {
		opts := render.LayerOptions{Colormap: "rdbu"}
		if err := render.SavePNG(change, opts, filepath.Join(renderDir, "water_change.png")); err != nil {
			return err
		}
	}
	if exportDir != "" {
		if err := catalog.WriteSNP(change, filepath.Join(exportDir, "water_change.snp")); err != nil {
			return err
		}
	}
	return nil
}

// clusterScene runs one time point: load the scene's bands, flatten,
// standardize, cluster, and rebuild the labels into an image.
func clusterScene(sess *compute.Session, client *catalog.Client, item catalog.Item) (*raster.Raster, error) {
	bar := progressbar.Default(int64(len(sceneBands)), "loading "+item.ID)
	scene, err := client.LoadScene(item, sceneBands, cacheDir, func() {
		_ = bar.Add(1)
	})
	if err != nil {
		return nil, err
	}
	_ = bar.Finish()

	matrix, err := raster.Flatten(scene)
	if err != nil {
		return nil, err
	}
	standardized := cluster.Standardize(matrix)

	sc := cluster.SpectralClustering{
		Clusters:    numClusters,
		Seed:        clusterSeed,
		Gamma:       rbfGamma,
		InitMaxIter: kmeansMaxIter,
	}
	labels, err := sc.Fit(sess, standardized)
	if err != nil {
		return nil, err
	}
	labelRaster, err := raster.UnflattenLabels(standardized, labels)
	if err != nil {
		return nil, err
	}

	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return nil, err
		}
		sink, ext := chooseLabelSink(exportFormat)
		if err := sink(standardized, labels, filepath.Join(exportDir, item.ID+"_labels"+ext)); err != nil {
			return nil, err
		}
		if exportSamples {
			if err := samplesio.WriteSamplesParquet(matrix, filepath.Join(exportDir, item.ID+"_samples.parquet")); err != nil {
				return nil, err
			}
		}
	}
	if renderDir != "" {
		if err := os.MkdirAll(renderDir, 0755); err != nil {
			return nil, err
		}
		opts := render.LayerOptions{
			Colormap: clusterCmap,
			Min:      0,
			Max:      float64(numClusters - 1),
		}
		if err := render.SavePNG(labelRaster, opts, filepath.Join(renderDir, item.ID+"_labels.png")); err != nil {
			return nil, err
		}
	}
	return labelRaster, nil
}

func chooseLabelSink(format string) (func(*raster.SampleMatrix, []int, string) error, string) {
	switch format {
	case "parquet":
		return samplesio.WriteLabelsParquet, ".parquet"
	case "csv":
		return samplesio.WriteLabelsCSV, ".csv"
	default:
		logrus.Warnf("Export format %s not recognized, using parquet", format)
		return samplesio.WriteLabelsParquet, ".parquet"
	}
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().StringVar(&apiURL, "api", "", "STAC API root, empty reads STAC_API_URL then the default endpoint")
	err := viper.BindPFlag("cluster.api", clusterCmd.Flags().Lookup("api"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Float64Var(&clusterLon, "lon", -118.71, "Longitude the scenes must cover")
	err = viper.BindPFlag("cluster.lon", clusterCmd.Flags().Lookup("lon"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Float64Var(&clusterLat, "lat", 38.69, "Latitude the scenes must cover")
	err = viper.BindPFlag("cluster.lat", clusterCmd.Flags().Lookup("lat"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Float64Var(&searchMargin, "margin", 15000, "Search box margin around the point in meters")
	err = viper.BindPFlag("cluster.margin", clusterCmd.Flags().Lookup("margin"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&collection, "collection", "landsat-c2l2-sr", "STAC collection to search")
	err = viper.BindPFlag("cluster.collection", clusterCmd.Flags().Lookup("collection"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&dateA, "dateA", "1988-06-01/1988-09-30", "ISO datetime range for the first time point")
	err = viper.BindPFlag("cluster.dateA", clusterCmd.Flags().Lookup("dateA"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&platformA, "platformA", "LANDSAT_5", "Platform for the first time point")
	err = viper.BindPFlag("cluster.platformA", clusterCmd.Flags().Lookup("platformA"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&dateB, "dateB", "2017-06-01/2017-09-30", "ISO datetime range for the second time point")
	err = viper.BindPFlag("cluster.dateB", clusterCmd.Flags().Lookup("dateB"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&platformB, "platformB", "LANDSAT_8", "Platform for the second time point")
	err = viper.BindPFlag("cluster.platformB", clusterCmd.Flags().Lookup("platformB"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Float64Var(&maxCloud, "maxCloud", 10, "Cloud cover ceiling in percent")
	err = viper.BindPFlag("cluster.maxCloud", clusterCmd.Flags().Lookup("maxCloud"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum scenes to request per search")
	err = viper.BindPFlag("cluster.limit", clusterCmd.Flags().Lookup("limit"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringSliceVar(&sceneBands, "bands", []string{"red", "green", "blue", "nir08"}, "Band common names to load")
	err = viper.BindPFlag("cluster.bands", clusterCmd.Flags().Lookup("bands"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVarP(&numClusters, "clusters", "k", 4, "Number of clusters to split the pixels into")
	err = viper.BindPFlag("cluster.clusters", clusterCmd.Flags().Lookup("clusters"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Int64Var(&clusterSeed, "seed", 0, "Random seed for the clustering fit")
	err = viper.BindPFlag("cluster.seed", clusterCmd.Flags().Lookup("seed"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().Float64Var(&rbfGamma, "gamma", 0, "RBF kernel coefficient, 0 uses 1/n_bands")
	err = viper.BindPFlag("cluster.gamma", clusterCmd.Flags().Lookup("gamma"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVar(&kmeansMaxIter, "maxIter", 300, "Iteration cap for clustering the embedding")
	err = viper.BindPFlag("cluster.maxIter", clusterCmd.Flags().Lookup("maxIter"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVar(&waterA, "waterA", -1, "Water cluster label in the first scene, -1 to skip masking")
	err = viper.BindPFlag("cluster.waterA", clusterCmd.Flags().Lookup("waterA"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVar(&waterB, "waterB", -1, "Water cluster label in the second scene, -1 to skip masking")
	err = viper.BindPFlag("cluster.waterB", clusterCmd.Flags().Lookup("waterB"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&cacheDir, "cacheDir", "data/scenes", "Directory band downloads are cached in")
	err = viper.BindPFlag("cluster.cacheDir", clusterCmd.Flags().Lookup("cacheDir"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&exportDir, "exportDir", "", "Write per-scene label files here, empty to skip")
	err = viper.BindPFlag("cluster.exportDir", clusterCmd.Flags().Lookup("exportDir"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&exportFormat, "exportFormat", "parquet", "Label export format, choose from: parquet, csv")
	err = viper.BindPFlag("cluster.exportFormat", clusterCmd.Flags().Lookup("exportFormat"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().BoolVar(&exportSamples, "exportSamples", false, "Also export the flattened band samples per scene")
	err = viper.BindPFlag("cluster.exportSamples", clusterCmd.Flags().Lookup("exportSamples"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&renderDir, "renderDir", ".", "Write label and change PNGs here, empty to skip")
	err = viper.BindPFlag("cluster.renderDir", clusterCmd.Flags().Lookup("renderDir"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().StringVar(&clusterCmap, "cmap", "viridis", "Colormap for the rendered labels")
	err = viper.BindPFlag("cluster.cmap", clusterCmd.Flags().Lookup("cmap"))
	if err != nil {
		logrus.Exit(1)
	}

	clusterCmd.Flags().IntVarP(&clusterWorkers, "numWorkers", "n", 8, "Number of workers to spawn for parallel processing")
	err = viper.BindPFlag("cluster.numWorkers", clusterCmd.Flags().Lookup("numWorkers"))
	if err != nil {
		logrus.Exit(1)
	}
}
