package raster

import "fmt"

// MaskLabel keeps the cells of a single-band label raster that equal the
// target label and zeroes everything else. Which integer corresponds to
// a physical feature such as water differs between independent clustering
// fits, so the target label is a manual input; a wrong choice produces a
// numerically valid but semantically wrong mask that only visual inspection
// catches.
func MaskLabel(r *Raster, label int) (*Raster, error) {
	if len(r.Bands) != 1 {
		return nil, fmt.Errorf("raster: mask wants a single-band label raster, got %d bands", len(r.Bands))
	}
	out := r.Clone()
	want := float64(label)
	for i, v := range out.Data[0] {
		if v != want {
			out.Data[0][i] = 0
		}
	}
	return out, nil
}
