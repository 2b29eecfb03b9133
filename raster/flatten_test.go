package raster

import (
	"reflect"
	"testing"
)

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	xs := []float64{100, 130, 160}
	ys := []float64{200, 230}
	r := newTestRaster(t, []string{"red", "nir"}, xs, ys, [][]float64{
		{1, 2, 3, 4, 5, 6},
		{10, 20, 30, 40, 50, 60},
	})
	r.Attrs = map[string]string{"id": "scene-1"}

	m, err := Flatten(r)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := m.Values.Dims()
	if rows != 6 || cols != 2 {
		t.Fatalf("got %dx%d sample matrix, want 6x2", rows, cols)
	}
	// Samples run row-major over y then x.
	if m.X[1] != 130 || m.Y[1] != 200 {
		t.Errorf("sample 1 labeled (%v, %v), want (130, 200)", m.X[1], m.Y[1])
	}
	if m.Values.At(4, 1) != 50 {
		t.Errorf("sample 4 nir = %v, want 50", m.Values.At(4, 1))
	}

	back, err := Unflatten(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, r) {
		t.Errorf("round trip changed the raster:\ngot  %+v\nwant %+v", back, r)
	}
}

func TestUnflattenIgnoresSampleOrder(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	r := newTestRaster(t, []string{"v"}, xs, ys, [][]float64{{1, 2, 3, 4}})

	m, err := Flatten(r)
	if err != nil {
		t.Fatal(err)
	}
	// Swap two samples; the coordinate labels move with the values.
	m.X[0], m.X[3] = m.X[3], m.X[0]
	m.Y[0], m.Y[3] = m.Y[3], m.Y[0]
	v0, v3 := m.Values.At(0, 0), m.Values.At(3, 0)
	m.Values.Set(0, 0, v3)
	m.Values.Set(3, 0, v0)

	back, err := Unflatten(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Data, r.Data) {
		t.Errorf("got %v, want %v", back.Data, r.Data)
	}
}

func TestUnflattenRejectsOffGridSamples(t *testing.T) {
	r := newTestRaster(t, []string{"v"}, []float64{0, 1}, []float64{0, 1},
		[][]float64{{1, 2, 3, 4}})
	m, err := Flatten(r)
	if err != nil {
		t.Fatal(err)
	}

	m.X[2] = 7 // not on the carried axis
	if _, err := Unflatten(m); err == nil {
		t.Error("expected an error for a sample off the carried axes")
	}

	m.X[2] = 1
	m.Y[2] = 1 // now duplicates sample 3
	if _, err := Unflatten(m); err == nil {
		t.Error("expected an error for duplicate sample coordinates")
	}
}

func TestUnflattenLabels(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{5, 6}
	r := newTestRaster(t, []string{"v"}, xs, ys, [][]float64{{0, 0, 0, 0, 0, 0}})

	m, err := Flatten(r)
	if err != nil {
		t.Fatal(err)
	}
	labels := []int{0, 1, 2, 3, 0, 1}

	img, err := UnflattenLabels(m, labels)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(img.Bands, []string{"labels"}) {
		t.Errorf("got bands %v, want [labels]", img.Bands)
	}
	want := []float64{0, 1, 2, 3, 0, 1}
	if !reflect.DeepEqual(img.Data[0], want) {
		t.Errorf("got %v, want %v", img.Data[0], want)
	}

	if _, err := UnflattenLabels(m, labels[:3]); err == nil {
		t.Error("expected an error for a short label vector")
	}
}
