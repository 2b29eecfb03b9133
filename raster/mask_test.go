package raster

import (
	"reflect"
	"testing"
)

func TestMaskLabel(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1}
	labels := newTestRaster(t, []string{"labels"}, xs, ys,
		[][]float64{{0, 2, 1, 2, 3, 2}})

	mask, err := MaskLabel(labels, 2)
	if err != nil {
		t.Fatal(err)
	}

	// Cells equal to the target label keep their value, all others zero.
	want := []float64{0, 2, 0, 2, 0, 2}
	if !reflect.DeepEqual(mask.Data[0], want) {
		t.Errorf("got %v, want %v", mask.Data[0], want)
	}
	if labels.Data[0][2] != 1 {
		t.Error("masking must not mutate the input raster")
	}
}

func TestMaskLabelRejectsMultiband(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	r := newTestRaster(t, []string{"a", "b"}, xs, ys,
		[][]float64{{0, 1, 2, 3}, {0, 1, 2, 3}})

	if _, err := MaskLabel(r, 1); err == nil {
		t.Error("expected an error for a multiband raster")
	}
}
