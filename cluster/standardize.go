// Package cluster groups pixels by spectral similarity: a global
// standardizer plus a seeded, worker-parallel spectral clustering over the
// flattened sample matrix.
package cluster

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// Standardize returns a copy of the sample matrix with the global mean
// subtracted and divided by the global population standard deviation, both
// computed once across all samples and bands jointly rather than per band.
// A zero-variance input divides by zero; the resulting non-finite values
// propagate to the caller unrecovered.
func Standardize(m *raster.SampleMatrix) *raster.SampleMatrix {
	n, d := m.Values.Dims()
	flat := make([]float64, 0, n*d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			flat = append(flat, m.Values.At(i, j))
		}
	}
	mean := stat.Mean(flat, nil)
	std := stat.PopStdDev(flat, nil)

	vals := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			vals.Set(i, j, (m.Values.At(i, j)-mean)/std)
		}
	}
	out := *m
	out.Values = vals
	return &out
}
