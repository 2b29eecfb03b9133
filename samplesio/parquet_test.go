package samplesio

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"
	"gonum.org/v1/gonum/mat"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

func exportMatrix(t testing.TB) *raster.SampleMatrix {
	t.Helper()
	return &raster.SampleMatrix{
		Values: mat.NewDense(3, 2, []float64{
			0.1, 0.2,
			0.3, 0.4,
			0.5, 0.6,
		}),
		Bands: []string{"nir08", "red"},
		X:     []float64{10, 20, 30},
		Y:     []float64{5, 5, 5},
		AxisX: []float64{10, 20, 30},
		AxisY: []float64{5},
		EPSG:  32611,
	}
}

func TestWriteLabelsParquet(t *testing.T) {
	m := exportMatrix(t)
	path := filepath.Join(t.TempDir(), "labels.parquet")

	if err := WriteLabelsParquet(m, []int{2, 0, 1}, path); err != nil {
		t.Fatal(err)
	}

	rows, err := parquet.ReadFile[LabelRow](path)
	if err != nil {
		t.Fatal(err)
	}
	want := []LabelRow{
		{X: 10, Y: 5, Label: 2},
		{X: 20, Y: 5, Label: 0},
		{X: 30, Y: 5, Label: 1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("got %v, want %v", rows, want)
	}
}

func TestWriteSamplesParquet(t *testing.T) {
	m := exportMatrix(t)
	path := filepath.Join(t.TempDir(), "samples.parquet")

	if err := WriteSamplesParquet(m, path); err != nil {
		t.Fatal(err)
	}

	rows, err := parquet.ReadFile[SampleRow](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want one per (pixel, band)", len(rows))
	}
	want := []SampleRow{
		{X: 10, Y: 5, Band: "nir08", Value: 0.1},
		{X: 10, Y: 5, Band: "red", Value: 0.2},
	}
	if !reflect.DeepEqual(rows[:2], want) {
		t.Errorf("got %v, want %v", rows[:2], want)
	}
}
