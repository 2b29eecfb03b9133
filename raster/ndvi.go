package raster

import "fmt"

// NDVI computes the normalized difference vegetation index
// (nir - red) / (nir + red) per pixel and returns it as a single-band
// raster named "ndvi". Zero-reflectance pixels divide to NaN and stay
// missing downstream.
func NDVI(r *Raster, nirBand, redBand string) (*Raster, error) {
	nir, err := r.Band(nirBand)
	if err != nil {
		return nil, fmt.Errorf("ndvi: %w", err)
	}
	red, err := r.Band(redBand)
	if err != nil {
		return nil, fmt.Errorf("ndvi: %w", err)
	}
	out := NewEmpty([]string{"ndvi"}, r.X, r.Y, r.EPSG)
	for i := range nir {
		out.Data[0][i] = (nir[i] - red[i]) / (nir[i] + red[i])
	}
	if r.Attrs != nil {
		out.Attrs = map[string]string{}
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out, nil
}
