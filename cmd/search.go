package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahuang11/landsat-ml-cookbook/catalog"
)

var searchAPI string
var searchLon float64
var searchLat float64
var searchBoxMargin float64
var searchCollection string
var searchDatetime string
var searchPlatform string
var searchMaxCloud float64
var searchMax int
var describeBands bool
var coveringOnly bool

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List scenes matching a point, date range and platform",
	Long: `Query a STAC catalog for scenes around a point and print them in
	server order with their acquisition time, platform, cloud cover and
	reference system. Use --describe to also print each asset's band
	metadata, which is where the band common names passed to 'cluster
	--bands' come from.`,
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()
		if err := runSearch(); err != nil {
			logrus.Fatal(err)
		}
	},
}

func runSearch() error {
	api := searchAPI
	if api == "" {
		api = os.Getenv("STAC_API_URL")
	}
	client := catalog.NewClient(api)

	items, err := client.Search(catalog.SearchParams{
		BBox:          catalog.SearchBBox(searchLon, searchLat, searchBoxMargin),
		Datetime:      searchDatetime,
		Collections:   []string{searchCollection},
		Platform:      searchPlatform,
		MaxCloudCover: searchMaxCloud,
		Limit:         searchMax,
	})
	if err != nil {
		return err
	}
	if coveringOnly {
		items = catalog.FilterCovering(items, searchLon, searchLat)
	}
	if len(items) == 0 {
		return fmt.Errorf("no scenes matched")
	}

	for i, item := range items {
		fmt.Printf("%2d  %s  %s  %s  cloud=%.1f%%  epsg=%d\n",
			i, item.ID, item.Properties.Datetime, item.Properties.Platform,
			item.Properties.CloudCover, item.Properties.EPSG)
		if describeBands {
			printBands(item)
		}
	}
	return nil
}

// printBands lists an item's per-asset band metadata in asset key order.
func printBands(item catalog.Item) {
	keys := make([]string, 0, len(item.Assets))
	for key := range item.Assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		asset := item.Assets[key]
		for _, band := range asset.Bands {
			desc := band.Description
			if desc == "" {
				desc = asset.Title
			}
			fmt.Printf("      %-14s %-8s %-10s %.3fum +/-%.3f  %s\n",
				key, band.CommonName, band.Name, band.CenterWavelength, band.FullWidthHalfMax, desc)
		}
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchAPI, "api", "", "STAC API root, empty reads STAC_API_URL then the default endpoint")
	err := viper.BindPFlag("search.api", searchCmd.Flags().Lookup("api"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().Float64Var(&searchLon, "lon", -118.71, "Longitude of the search point")
	err = viper.BindPFlag("search.lon", searchCmd.Flags().Lookup("lon"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().Float64Var(&searchLat, "lat", 38.69, "Latitude of the search point")
	err = viper.BindPFlag("search.lat", searchCmd.Flags().Lookup("lat"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().Float64Var(&searchBoxMargin, "margin", 15000, "Search box margin around the point in meters")
	err = viper.BindPFlag("search.margin", searchCmd.Flags().Lookup("margin"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().StringVar(&searchCollection, "collection", "landsat-c2l2-sr", "STAC collection to search")
	err = viper.BindPFlag("search.collection", searchCmd.Flags().Lookup("collection"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().StringVar(&searchDatetime, "datetime", "", "ISO datetime range, \"start/end\"")
	err = viper.BindPFlag("search.datetime", searchCmd.Flags().Lookup("datetime"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().StringVar(&searchPlatform, "platform", "", "Platform to match, empty for any")
	err = viper.BindPFlag("search.platform", searchCmd.Flags().Lookup("platform"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().Float64Var(&searchMaxCloud, "maxCloud", 0, "Cloud cover ceiling in percent, 0 for no ceiling")
	err = viper.BindPFlag("search.maxCloud", searchCmd.Flags().Lookup("maxCloud"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().IntVar(&searchMax, "limit", 10, "Maximum scenes to request")
	err = viper.BindPFlag("search.limit", searchCmd.Flags().Lookup("limit"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().BoolVar(&describeBands, "describe", false, "Also print each asset's band metadata")
	err = viper.BindPFlag("search.describe", searchCmd.Flags().Lookup("describe"))
	if err != nil {
		logrus.Exit(1)
	}

	searchCmd.Flags().BoolVar(&coveringOnly, "covering", false, "Keep only scenes whose footprint contains the point")
	err = viper.BindPFlag("search.covering", searchCmd.Flags().Lookup("covering"))
	if err != nil {
		logrus.Exit(1)
	}
}
