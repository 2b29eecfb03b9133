package raster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SampleMatrix is a raster reshaped to one row per pixel and one column per
// band, the form clustering consumes. The per-sample coordinate labels are
// carried alongside the values so the mapping back to (x, y) is lossless and
// does not depend on row order.
type SampleMatrix struct {
	Values *mat.Dense // n samples x b bands
	Bands  []string
	// X and Y label each sample with its pixel coordinates.
	X []float64
	Y []float64
	// AxisX and AxisY are the source grid axes the labels are drawn from.
	AxisX []float64
	AxisY []float64
	EPSG  int
	Attrs map[string]string
}

// Len returns the number of samples.
func (m *SampleMatrix) Len() int { return len(m.X) }

// Flatten reshapes a raster into a sample matrix, row-major over y then x.
func Flatten(r *Raster) (*SampleMatrix, error) {
	w, h := r.Width(), r.Height()
	n := w * h
	if n == 0 || len(r.Bands) == 0 {
		return nil, fmt.Errorf("raster: cannot flatten empty raster")
	}
	vals := mat.NewDense(n, len(r.Bands), nil)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for iy := 0; iy < h; iy++ {
		for ix := 0; ix < w; ix++ {
			i := iy*w + ix
			xs[i] = r.X[ix]
			ys[i] = r.Y[iy]
			for b := range r.Bands {
				vals.Set(i, b, r.Data[b][i])
			}
		}
	}
	m := &SampleMatrix{
		Values: vals,
		Bands:  append([]string(nil), r.Bands...),
		X:      xs,
		Y:      ys,
		AxisX:  append([]float64(nil), r.X...),
		AxisY:  append([]float64(nil), r.Y...),
		EPSG:   r.EPSG,
	}
	if r.Attrs != nil {
		m.Attrs = map[string]string{}
		for k, v := range r.Attrs {
			m.Attrs[k] = v
		}
	}
	return m, nil
}

// Unflatten rebuilds the raster a sample matrix was flattened from. Each
// sample is placed by its coordinate labels, so a reordered matrix still
// reproduces the original raster exactly.
func Unflatten(m *SampleMatrix) (*Raster, error) {
	place, err := m.placements()
	if err != nil {
		return nil, err
	}
	out := NewEmpty(m.Bands, m.AxisX, m.AxisY, m.EPSG)
	for i, p := range place {
		for b := range m.Bands {
			out.Data[b][p] = m.Values.At(i, b)
		}
	}
	if m.Attrs != nil {
		out.Attrs = map[string]string{}
		for k, v := range m.Attrs {
			out.Attrs[k] = v
		}
	}
	return out, nil
}

// UnflattenLabels reconstructs a cluster label vector into a single-band
// "labels" raster shaped by the matrix's carried coordinates.
func UnflattenLabels(m *SampleMatrix, labels []int) (*Raster, error) {
	if len(labels) != m.Len() {
		return nil, fmt.Errorf("raster: %d labels for %d samples", len(labels), m.Len())
	}
	place, err := m.placements()
	if err != nil {
		return nil, err
	}
	out := NewEmpty([]string{"labels"}, m.AxisX, m.AxisY, m.EPSG)
	for i, p := range place {
		out.Data[0][p] = float64(labels[i])
	}
	return out, nil
}

// placements resolves every sample's flat cell index from its coordinate
// labels, requiring a bijection onto the grid.
func (m *SampleMatrix) placements() ([]int, error) {
	w, h := len(m.AxisX), len(m.AxisY)
	if m.Len() != w*h {
		return nil, fmt.Errorf("raster: %d samples cannot fill a %dx%d grid", m.Len(), w, h)
	}
	xIdx := make(map[float64]int, w)
	for i, x := range m.AxisX {
		xIdx[x] = i
	}
	yIdx := make(map[float64]int, h)
	for i, y := range m.AxisY {
		yIdx[y] = i
	}
	place := make([]int, m.Len())
	seen := make([]bool, w*h)
	for i := 0; i < m.Len(); i++ {
		ix, ok := xIdx[m.X[i]]
		if !ok {
			return nil, fmt.Errorf("raster: sample %d x=%v is not on the carried x axis", i, m.X[i])
		}
		iy, ok := yIdx[m.Y[i]]
		if !ok {
			return nil, fmt.Errorf("raster: sample %d y=%v is not on the carried y axis", i, m.Y[i])
		}
		p := iy*w + ix
		if seen[p] {
			return nil, fmt.Errorf("raster: duplicate sample at (%v, %v)", m.X[i], m.Y[i])
		}
		seen[p] = true
		place[i] = p
	}
	return place, nil
}
