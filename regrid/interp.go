package regrid

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/compute"
	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// axisWeight locates one target coordinate between two source coordinates.
// A target exactly on a source coordinate points both indices at it with
// zero weight, so on-grid values are reproduced untouched.
type axisWeight struct {
	i0, i1 int
	w      float64
	ok     bool
}

func axisWeights(src, dst []float64) []axisWeight {
	out := make([]axisWeight, len(dst))
	for k, t := range dst {
		if len(src) == 0 || t < src[0] || t > src[len(src)-1] {
			continue // stays ok=false, interpolates to NaN
		}
		i := sort.SearchFloat64s(src, t)
		if src[i] == t {
			out[k] = axisWeight{i0: i, i1: i, ok: true}
			continue
		}
		out[k] = axisWeight{
			i0: i - 1,
			i1: i,
			w:  (t - src[i-1]) / (src[i] - src[i-1]),
			ok: true,
		}
	}
	return out
}

// Interpolate resamples a raster onto the target grid with flat (planar)
// bilinear interpolation, fanning target rows over the session's workers.
// Cells that would need extrapolation beyond the source coordinate range
// receive the missing-value marker, as does any cell whose contributing
// source cells are missing. Two rasters interpolated onto the same grid are
// directly comparable cell-for-cell afterwards.
func Interpolate(s *compute.Session, r *raster.Raster, g *Grid) (*raster.Raster, error) {
	logrus.Debugf("interpolating %v from %dx%d onto %dx%d", r.Bands, r.Width(), r.Height(), len(g.X), len(g.Y))

	wxs := axisWeights(r.X, g.X)
	wys := axisWeights(r.Y, g.Y)
	out := raster.NewEmpty(r.Bands, g.X, g.Y, r.EPSG)

	srcW := r.Width()
	dstW := len(g.X)
	err := s.Each(len(g.Y), func(iy int) error {
		wy := wys[iy]
		if !wy.ok {
			return nil
		}
		for ix, wx := range wxs {
			if !wx.ok {
				continue
			}
			for b := range r.Data {
				v00 := r.Data[b][wy.i0*srcW+wx.i0]
				v01 := r.Data[b][wy.i0*srcW+wx.i1]
				v10 := r.Data[b][wy.i1*srcW+wx.i0]
				v11 := r.Data[b][wy.i1*srcW+wx.i1]
				top := v00 + (v01-v00)*wx.w
				bot := v10 + (v11-v10)*wx.w
				out.Data[b][iy*dstW+ix] = top + (bot-top)*wy.w
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
