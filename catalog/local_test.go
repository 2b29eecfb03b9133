package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

func TestLocalCatalogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r, err := raster.New([]string{"nir08", "red"}, []float64{0, 30}, []float64{0, 30},
		[][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}, 32611)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSNP(r, filepath.Join(dir, "lake.snp")); err != nil {
		t.Fatal(err)
	}

	catPath := filepath.Join(dir, "catalog.yaml")
	sources := map[string]Source{
		"lake_1988": {
			Driver:      "snp",
			Description: "Synthetic Walker Lake scene",
			Args:        SourceArgs{URLPath: "lake.snp"},
		},
	}
	if err := WriteLocal(catPath, sources, map[string]string{"version": "1"}); err != nil {
		t.Fatal(err)
	}

	cat, err := OpenLocal(catPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Names(); !reflect.DeepEqual(got, []string{"lake_1988"}) {
		t.Errorf("names = %v", got)
	}
	src, ok := cat.Source("lake_1988")
	if !ok || src.Driver != "snp" {
		t.Errorf("source = %+v, ok=%v", src, ok)
	}

	// Load resolves the relative urlpath against the catalog's directory.
	got, err := cat.Load("lake_1988")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, r) {
		t.Errorf("loaded raster differs:\ngot  %+v\nwant %+v", got, r)
	}
}

func TestWriteLocalRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := WriteLocal(path, nil, nil); err == nil {
		t.Error("expected an error for a catalog with no sources")
	}
}

func TestOpenLocalValidates(t *testing.T) {
	dir := t.TempDir()

	noPath := filepath.Join(dir, "nopath.yaml")
	if err := os.WriteFile(noPath, []byte("sources:\n  scene:\n    driver: snp\n    args: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenLocal(noPath); err == nil {
		t.Error("source without urlpath: expected an error")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("sources: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenLocal(empty); err == nil {
		t.Error("catalog without sources: expected an error")
	}
}

func TestLoadUnknownDriverAndSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := "sources:\n  scene:\n    driver: zarr\n    args:\n      urlpath: scene.zarr\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := OpenLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Load("scene"); err == nil {
		t.Error("unknown driver: expected an error")
	}
	if _, err := cat.Load("missing"); err == nil {
		t.Error("unknown source: expected an error")
	}
}
