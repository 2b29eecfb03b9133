package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/golang/snappy"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// The snp driver stores a raster as a snappy-compressed block: a fixed
// header (band count, width, height, EPSG as uint32/int32, then pixel-center
// origin and step per axis as float64), the band names length-prefixed, and
// the band planes as little-endian float64 rows with y ascending. It exists
// so sample datasets ship as small self-contained files that load without
// GDAL.

const snpMagic = "SNPR"

// ReadSNP loads a raster from a snappy-compressed grid file.
func ReadSNP(path string) (*raster.Raster, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snp file: %w", err)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", path, err)
	}
	rd := bytes.NewReader(data)

	magic := make([]byte, len(snpMagic))
	if _, err := rd.Read(magic); err != nil || string(magic) != snpMagic {
		return nil, fmt.Errorf("%s is not an snp grid file", path)
	}

	var nBands, w, h uint32
	var epsg int32
	var x0, xStep, y0, yStep float64
	for _, field := range []interface{}{&nBands, &w, &h, &epsg, &x0, &xStep, &y0, &yStep} {
		if err := binary.Read(rd, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("error reading snp header: %w", err)
		}
	}

	names := make([]string, nBands)
	for i := range names {
		var nameLen uint16
		if err := binary.Read(rd, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("error reading snp band name: %w", err)
		}
		name := make([]byte, nameLen)
		if _, err := rd.Read(name); err != nil {
			return nil, fmt.Errorf("error reading snp band name: %w", err)
		}
		names[i] = string(name)
	}

	xs := make([]float64, w)
	for i := range xs {
		xs[i] = x0 + float64(i)*xStep
	}
	ys := make([]float64, h)
	for j := range ys {
		ys[j] = y0 + float64(j)*yStep
	}

	bands := make([][]float64, nBands)
	for b := range bands {
		vals := make([]float64, w*h)
		if err := binary.Read(rd, binary.LittleEndian, vals); err != nil {
			return nil, fmt.Errorf("error reading snp band %s: %w", names[b], err)
		}
		bands[b] = vals
	}

	return raster.New(names, xs, ys, bands, int(epsg))
}

// WriteSNP stores a raster as a snappy-compressed grid file.
func WriteSNP(r *raster.Raster, path string) error {
	var buf bytes.Buffer
	buf.WriteString(snpMagic)

	w, h := r.Width(), r.Height()
	header := []interface{}{
		uint32(len(r.Bands)), uint32(w), uint32(h), int32(r.EPSG),
		r.X[0], axisStep(r.X), r.Y[0], axisStep(r.Y),
	}
	for _, field := range header {
		if err := binary.Write(&buf, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("error writing snp header: %w", err)
		}
	}

	for _, name := range r.Bands {
		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(name))); err != nil {
			return fmt.Errorf("error writing snp band name: %w", err)
		}
		buf.WriteString(name)
	}

	for _, vals := range r.Data {
		if err := binary.Write(&buf, binary.LittleEndian, vals); err != nil {
			return fmt.Errorf("error writing snp band data: %w", err)
		}
	}

	compressed := snappy.Encode(nil, buf.Bytes())
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return fmt.Errorf("error writing snp file: %w", err)
	}
	return nil
}
