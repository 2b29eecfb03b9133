package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Verbose bool
var Debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "landsat-ml",
	Short: "Regrid and cluster Landsat imagery to track lake change",
	Long: `Pipelines for comparing Landsat scenes across time:

	'regrid' resamples two scenes from a local catalog onto a shared grid
	and differences their NDVI:
	./landsat-ml regrid [opts] [dataset-a] [dataset-b]

	'cluster' searches a STAC catalog for two scenes, groups their pixels
	by spectral similarity and differences the water masks:
	./landsat-ml cluster [opts]

	'search' lists matching scenes, 'sample' writes a synthetic local
	catalog for offline runs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// A .env alongside the binary can supply STAC_API_URL; missing files
	// are fine.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded .env")
	}

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	if err != nil {
		logrus.Exit(1)
	}
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	err = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logrus.Exit(1)
	}
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}
