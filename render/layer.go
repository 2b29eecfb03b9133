package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// LayerOptions controls how a raster band renders to an image.
type LayerOptions struct {
	// Band selects the band to render; empty means the first band.
	Band string
	// Colormap names the ramp, viridis when empty.
	Colormap string
	// Min and Max fix the value range mapped onto the ramp. When both are
	// zero the range comes from the data.
	Min, Max float64
	// Geographic corrects the pixel aspect for lon/lat grids, shrinking
	// the x axis by the cosine of the mean latitude.
	Geographic bool
	// Rotation turns the output by quarter turns counterclockwise.
	Rotation int
}

// Image renders one band to an NRGBA image. NaN cells come out fully
// transparent so missing coverage stays visible as holes.
func Image(r *raster.Raster, opts LayerOptions) (image.Image, error) {
	band := opts.Band
	if band == "" {
		band = r.Bands[0]
	}
	vals, err := r.Band(band)
	if err != nil {
		return nil, err
	}
	name := opts.Colormap
	if name == "" {
		name = "viridis"
	}
	cm, err := ColormapByName(name)
	if err != nil {
		return nil, err
	}

	lo, hi := opts.Min, opts.Max
	if lo == 0 && hi == 0 {
		lo, hi = valueRange(vals)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	w, h := r.Width(), r.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		iy := h - 1 - row
		for col := 0; col < w; col++ {
			v := vals[iy*w+col]
			if math.IsNaN(v) {
				continue
			}
			t := (v - lo) / span
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			cr, cg, cb := cm.At(t).RGB255()
			img.SetNRGBA(col, row, color.NRGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}

	var out image.Image = img
	if opts.Geographic {
		out = squeezeGeographic(out, r)
	}
	for turn := 0; turn < ((opts.Rotation % 4) + 4) % 4; turn++ {
		out = rotateCCW(out)
	}
	return out, nil
}

// SavePNG renders a band and writes it to path.
func SavePNG(r *raster.Raster, opts LayerOptions, path string) error {
	img, err := Image(r, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	logrus.Infof("wrote %s", path)
	return nil
}

func valueRange(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// squeezeGeographic narrows the image so a degree of longitude takes up
// cos(latitude) of the width a degree of latitude does.
func squeezeGeographic(img image.Image, r *raster.Raster) image.Image {
	meanLat := (r.Y[0] + r.Y[len(r.Y)-1]) / 2
	scale := math.Cos(meanLat * math.Pi / 180)
	if scale <= 0 || scale >= 1 {
		return img
	}
	b := img.Bounds()
	outW := int(math.Round(float64(b.Dx()) * scale))
	if outW < 1 {
		outW = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, outW, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < outW; x++ {
			srcX := int(float64(x) / scale)
			if srcX >= b.Dx() {
				srcX = b.Dx() - 1
			}
			out.Set(x, y, img.At(b.Min.X+srcX, b.Min.Y+y))
		}
	}
	return out
}

func rotateCCW(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(y, b.Dx()-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
