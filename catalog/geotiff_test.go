package catalog

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/airbusgeo/godal"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

func TestGeoTIFFRoundTrip(t *testing.T) {
	r, err := raster.New(
		[]string{"nir08", "red"},
		[]float64{11.5, 14.5, 17.5},
		[]float64{100, 102},
		[][]float64{
			{0.31, 0.32, 0.33, 0.34, 0.35, 0.36},
			{0.11, 0.12, 0.13, 0.14, 0.15, 0.16},
		},
		32611,
	)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "scene.tif")
	if err := WriteGeoTIFF(r, path); err != nil {
		t.Fatal(err)
	}

	// GeoTIFFs carry no band names, so reading restores them explicitly.
	got, err := ReadGeoTIFF(path, []string{"nir08", "red"}, 32611)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, r) {
		t.Errorf("round trip changed the raster:\ngot  %+v\nwant %+v", got, r)
	}
}

func TestGeoTIFFKeepsMissingValues(t *testing.T) {
	r, err := raster.New([]string{"v"}, []float64{0.5, 1.5}, []float64{10, 11},
		[][]float64{{1, math.NaN(), 3, 4}}, 32611)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "gaps.tif")
	if err := WriteGeoTIFF(r, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGeoTIFF(path, []string{"v"}, 32611)
	if err != nil {
		t.Fatal(err)
	}

	if v := got.At(0, 1, 0); !math.IsNaN(v) {
		t.Errorf("got %v, want the nodata cell back as NaN", v)
	}
	if v := got.At(0, 0, 0); v != 1 {
		t.Errorf("got %v, want 1", v)
	}
	if v := got.At(0, 0, 1); v != 3 {
		t.Errorf("got %v, want 3", v)
	}
}

func TestReadGeoTIFFDefaultNames(t *testing.T) {
	r, err := raster.New([]string{"a", "b"}, []float64{0.5}, []float64{0.5},
		[][]float64{{7}, {8}}, 0)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "anon.tif")
	if err := WriteGeoTIFF(r, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGeoTIFF(path, nil, 0)
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"band_1", "band_2"}; !reflect.DeepEqual(got.Bands, want) {
		t.Errorf("bands = %v, want %v", got.Bands, want)
	}
	if _, err := ReadGeoTIFF(path, []string{"only_one"}, 0); err == nil {
		t.Error("band name count mismatch: expected an error")
	}
}

func TestReadGeoTIFFRejectsRotation(t *testing.T) {
	godal.RegisterAll()

	path := filepath.Join(t.TempDir(), "rotated.tif")
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{0, 1, 0.5, 0, 0, -1}); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadGeoTIFF(path, nil, 0); err == nil {
		t.Error("rotated geotransform: expected an error")
	}
}
