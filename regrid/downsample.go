package regrid

import (
	"fmt"
	"math"
	"sort"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// Downsample aggregates a raster already on a regular grid into coarser
// half-open bins aligned to the given coarse coordinates, labelling each
// bin with its left edge. The aggregation defaults to the mean when agg is
// nil. Bins that gather no source cells come back as missing values, and
// missing source cells poison their bin the same way any arithmetic with a
// missing value does.
func Downsample(r *raster.Raster, coarseX, coarseY []float64, agg raster.AggFunc) (*raster.Raster, error) {
	if agg == nil {
		agg = raster.Mean
	}
	strideX, err := uniformStride("x", coarseX)
	if err != nil {
		return nil, err
	}
	strideY, err := uniformStride("y", coarseY)
	if err != nil {
		return nil, err
	}

	xBin := make([]int, r.Width())
	for i, x := range r.X {
		xBin[i] = binIndex(coarseX, strideX, x)
	}
	yBin := make([]int, r.Height())
	for i, y := range r.Y {
		yBin[i] = binIndex(coarseY, strideY, y)
	}

	out := raster.NewEmpty(r.Bands, coarseX, coarseY, r.EPSG)
	coarseW := len(coarseX)
	for b := range r.Bands {
		bins := make([][]float64, coarseW*len(coarseY))
		for iy := 0; iy < r.Height(); iy++ {
			by := yBin[iy]
			if by < 0 {
				continue
			}
			for ix := 0; ix < r.Width(); ix++ {
				bx := xBin[ix]
				if bx < 0 {
					continue
				}
				p := by*coarseW + bx
				bins[p] = append(bins[p], r.At(b, ix, iy))
			}
		}
		for p, vals := range bins {
			if len(vals) == 0 {
				continue // stays NaN
			}
			out.Data[b][p] = agg(vals...)
		}
	}
	return out, nil
}

// uniformStride validates an ascending, evenly spaced coarse axis and
// returns its spacing.
func uniformStride(axis string, c []float64) (float64, error) {
	if len(c) < 2 {
		return 0, fmt.Errorf("regrid: coarse %s axis needs at least 2 coordinates", axis)
	}
	stride := c[1] - c[0]
	if stride <= 0 {
		return 0, fmt.Errorf("regrid: coarse %s axis not ascending", axis)
	}
	for i := 2; i < len(c); i++ {
		if math.Abs((c[i]-c[i-1])-stride) > 1e-9*math.Max(1, stride) {
			return 0, fmt.Errorf("regrid: coarse %s axis not evenly spaced at index %d", axis, i)
		}
	}
	return stride, nil
}

// binIndex places a fine coordinate into the half-open bin [c[j], c[j]+stride)
// it falls in, or -1 when it lies outside every bin.
func binIndex(c []float64, stride, v float64) int {
	if v < c[0] {
		return -1
	}
	i := sort.SearchFloat64s(c, v)
	if i < len(c) && c[i] == v {
		return i
	}
	j := i - 1
	if j == len(c)-1 && v >= c[j]+stride {
		return -1
	}
	return j
}
