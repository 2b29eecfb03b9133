// Package raster holds the labeled multiband raster type shared by every
// pipeline stage: named spectral bands over ascending x/y coordinate axes,
// with NaN as the missing-value marker and an EPSG code identifying the
// reference system the coordinates are expressed in.
package raster

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Raster is a labeled multiband grid. Data is stored row-major per band:
// Data[b][iy*len(X)+ix] is the value of band b at (X[ix], Y[iy]). Both
// coordinate axes are strictly ascending; loaders flip north-up imagery
// into this order on read.
type Raster struct {
	Bands []string
	X     []float64
	Y     []float64
	Data  [][]float64
	EPSG  int
	Attrs map[string]string
}

// New validates and assembles a raster from band names, coordinate axes and
// per-band row-major values.
func New(bands []string, xs, ys []float64, data [][]float64, epsg int) (*Raster, error) {
	if len(data) != len(bands) {
		return nil, fmt.Errorf("raster: %d bands named but %d data planes given", len(bands), len(data))
	}
	if err := checkAscending("x", xs); err != nil {
		return nil, err
	}
	if err := checkAscending("y", ys); err != nil {
		return nil, err
	}
	want := len(xs) * len(ys)
	for i, plane := range data {
		if len(plane) != want {
			return nil, fmt.Errorf("raster: band %q has %d values, want %d", bands[i], len(plane), want)
		}
	}
	return &Raster{Bands: bands, X: xs, Y: ys, Data: data, EPSG: epsg}, nil
}

// NewEmpty allocates a raster of the given shape with every cell set to the
// missing-value marker.
func NewEmpty(bands []string, xs, ys []float64, epsg int) *Raster {
	data := make([][]float64, len(bands))
	for b := range data {
		plane := make([]float64, len(xs)*len(ys))
		for i := range plane {
			plane[i] = math.NaN()
		}
		data[b] = plane
	}
	return &Raster{Bands: bands, X: xs, Y: ys, Data: data, EPSG: epsg}
}

func checkAscending(axis string, vals []float64) error {
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return fmt.Errorf("raster: %s axis not strictly ascending at index %d", axis, i)
		}
	}
	return nil
}

// Width returns the number of columns (x coordinates).
func (r *Raster) Width() int { return len(r.X) }

// Height returns the number of rows (y coordinates).
func (r *Raster) Height() int { return len(r.Y) }

// BandIndex returns the position of the named band.
func (r *Raster) BandIndex(name string) (int, bool) {
	for i, b := range r.Bands {
		if b == name {
			return i, true
		}
	}
	return 0, false
}

// Band returns the values of the named band.
func (r *Raster) Band(name string) ([]float64, error) {
	i, ok := r.BandIndex(name)
	if !ok {
		return nil, fmt.Errorf("raster: no band %q (have %v)", name, r.Bands)
	}
	return r.Data[i], nil
}

// At reads band b at column ix, row iy.
func (r *Raster) At(b, ix, iy int) float64 {
	return r.Data[b][iy*len(r.X)+ix]
}

// SetAt writes band b at column ix, row iy.
func (r *Raster) SetAt(b, ix, iy int, v float64) {
	r.Data[b][iy*len(r.X)+ix] = v
}

// Select returns a raster holding copies of the named bands in the given
// order.
func (r *Raster) Select(bands ...string) (*Raster, error) {
	data := make([][]float64, len(bands))
	for i, name := range bands {
		bi, ok := r.BandIndex(name)
		if !ok {
			return nil, fmt.Errorf("raster: no band %q (have %v)", name, r.Bands)
		}
		data[i] = append([]float64(nil), r.Data[bi]...)
	}
	out, err := New(append([]string(nil), bands...), r.X, r.Y, data, r.EPSG)
	if err != nil {
		return nil, err
	}
	if r.Attrs != nil {
		out.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out, nil
}

// Clone deep-copies the raster.
func (r *Raster) Clone() *Raster {
	out := &Raster{
		Bands: append([]string(nil), r.Bands...),
		X:     append([]float64(nil), r.X...),
		Y:     append([]float64(nil), r.Y...),
		Data:  make([][]float64, len(r.Data)),
		EPSG:  r.EPSG,
	}
	for b := range r.Data {
		out.Data[b] = append([]float64(nil), r.Data[b]...)
	}
	if r.Attrs != nil {
		out.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// Congruent reports whether both rasters share identical coordinate axes.
// Only congruent rasters are directly comparable cell-for-cell.
func (r *Raster) Congruent(o *Raster) bool {
	if len(r.X) != len(o.X) || len(r.Y) != len(o.Y) {
		return false
	}
	for i := range r.X {
		if r.X[i] != o.X[i] {
			return false
		}
	}
	for i := range r.Y {
		if r.Y[i] != o.Y[i] {
			return false
		}
	}
	return true
}

// Subtract computes a minus b band by band. When the coordinate grids differ
// the result is silently reduced to the intersecting coordinates, exactly as
// a label-aligned join would do. That shrinkage is the pitfall the regrid
// pipeline exists to avoid: interpolate both rasters onto a shared grid first
// if a full-size difference is wanted.
func Subtract(a, b *Raster) (*Raster, error) {
	return apply2(a, b, func(x, y float64) float64 { return x - y })
}

func apply2(a, b *Raster, op func(av, bv float64) float64) (*Raster, error) {
	if len(a.Bands) != len(b.Bands) {
		return nil, fmt.Errorf("raster: band count mismatch: %d vs %d", len(a.Bands), len(b.Bands))
	}
	if a.Congruent(b) {
		out := NewEmpty(a.Bands, a.X, a.Y, a.EPSG)
		for bi := range a.Data {
			for i := range a.Data[bi] {
				out.Data[bi][i] = op(a.Data[bi][i], b.Data[bi][i])
			}
		}
		return out, nil
	}

	xs, ax, bx := intersect(a.X, b.X)
	ys, ay, by := intersect(a.Y, b.Y)
	logrus.Warnf("coordinate grids differ; result reduced to %dx%d intersecting cells", len(xs), len(ys))
	out := NewEmpty(a.Bands, xs, ys, a.EPSG)
	for bi := range a.Bands {
		for iy := range ys {
			for ix := range xs {
				av := a.Data[bi][ay[iy]*len(a.X)+ax[ix]]
				bv := b.Data[bi][by[iy]*len(b.X)+bx[ix]]
				out.Data[bi][iy*len(xs)+ix] = op(av, bv)
			}
		}
	}
	return out, nil
}

// intersect returns the coordinates present in both ascending axes along
// with each value's index in the source axes.
func intersect(a, b []float64) (vals []float64, ai, bi []int) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			vals = append(vals, a[i])
			ai = append(ai, i)
			bi = append(bi, j)
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return vals, ai, bi
}

// Combine stacks single-band rasters on congruent grids into one multiband
// raster, one band per input, named by names. This is how two interpolated
// time points become a single collection sharing coordinates.
func Combine(names []string, rs []*Raster) (*Raster, error) {
	if len(names) != len(rs) {
		return nil, fmt.Errorf("raster: %d names for %d rasters", len(names), len(rs))
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("raster: nothing to combine")
	}
	for i, r := range rs {
		if len(r.Bands) != 1 {
			return nil, fmt.Errorf("raster: combine input %q must be single-band, has %d", names[i], len(r.Bands))
		}
		if !rs[0].Congruent(r) {
			return nil, fmt.Errorf("raster: combine input %q is not on the shared grid", names[i])
		}
	}
	data := make([][]float64, len(rs))
	for i, r := range rs {
		data[i] = append([]float64(nil), r.Data[0]...)
	}
	return New(names, rs[0].X, rs[0].Y, data, rs[0].EPSG)
}
