package catalog

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

func writeBandTIFF(t testing.TB, dir, file, band string, vals []float64) {
	t.Helper()
	r, err := raster.New([]string{band}, []float64{15, 45}, []float64{15, 45},
		[][]float64{vals}, 32611)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteGeoTIFF(r, filepath.Join(dir, file)); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScene(t *testing.T) {
	remote := t.TempDir()
	writeBandTIFF(t, remote, "nir.tif", "nir08", []float64{1, 2, 3, 4})
	writeBandTIFF(t, remote, "red.tif", "red", []float64{5, 6, 7, 8})

	var requests int
	files := http.FileServer(http.Dir(remote))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		files.ServeHTTP(w, r)
	}))
	defer srv.Close()

	it := Item{
		ID: "LT05_L2SP_042033_19880705_02_T1",
		Properties: Properties{
			Datetime: "1988-07-05T18:04:11Z",
			Platform: "LANDSAT_5",
			EPSG:     32611,
		},
		Assets: map[string]Asset{
			"nir08": {Href: srv.URL + "/nir.tif", Bands: []Band{{Name: "B4", CommonName: "nir08"}}},
			"red":   {Href: srv.URL + "/red.tif", Bands: []Band{{Name: "B3", CommonName: "red"}}},
		},
	}

	cache := t.TempDir()
	var bandsLoaded int
	c := NewClient(srv.URL)
	scene, err := c.LoadScene(it, []string{"nir08", "red"}, cache, func() { bandsLoaded++ })
	if err != nil {
		t.Fatal(err)
	}

	want, err := raster.New([]string{"nir08", "red"}, []float64{15, 45}, []float64{15, 45},
		[][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}, 32611)
	if err != nil {
		t.Fatal(err)
	}
	want.Attrs = map[string]string{
		"id":       it.ID,
		"datetime": it.Properties.Datetime,
		"platform": it.Properties.Platform,
	}
	if !reflect.DeepEqual(scene, want) {
		t.Errorf("scene differs:\ngot  %+v\nwant %+v", scene, want)
	}
	if bandsLoaded != 2 {
		t.Errorf("progress ran %d times, want once per band", bandsLoaded)
	}
	if requests != 2 {
		t.Fatalf("server saw %d requests, want 2", requests)
	}

	// A second load must come entirely from the cache directory.
	again, err := c.LoadScene(it, []string{"nir08", "red"}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Errorf("server saw %d requests after a cached load, want still 2", requests)
	}
	if !reflect.DeepEqual(again, scene) {
		t.Error("cached load differs from the downloaded one")
	}
}

func TestLoadSceneLocalAssets(t *testing.T) {
	dir := t.TempDir()
	writeBandTIFF(t, dir, "red.tif", "red", []float64{5, 6, 7, 8})

	it := Item{
		ID:         "local",
		Properties: Properties{EPSG: 32611},
		Assets: map[string]Asset{
			"red": {Href: filepath.Join(dir, "red.tif")},
		},
	}

	scene, err := NewClient("").LoadScene(it, []string{"red"}, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := scene.At(0, 1, 1); v != 8 {
		t.Errorf("got %v, want 8", v)
	}
}

func TestLoadSceneMissingBand(t *testing.T) {
	it := Item{ID: "bare", Assets: map[string]Asset{}}
	if _, err := NewClient("").LoadScene(it, []string{"swir16"}, t.TempDir(), nil); err == nil {
		t.Error("missing asset: expected an error")
	}
	if _, err := NewClient("").LoadScene(it, nil, t.TempDir(), nil); err == nil {
		t.Error("no bands requested: expected an error")
	}
}
