package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

const geotiffNoData = -9999.0

// ReadGeoTIFF loads every band of a GeoTIFF into a raster. Coordinates are
// pixel centers derived from the geotransform, rows are reordered so the y
// axis ascends, and nodata pixels become NaN. bandNames overrides the band
// naming when non-empty; epsg supplies the reference system code since small
// sample files often carry none.
func ReadGeoTIFF(path string, bandNames []string, epsg int) (r *raster.Raster, err error) {
	godal.RegisterAll()

	ds, err := godal.Open(path)
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	gt, err := ds.GeoTransform()
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	if gt[2] != 0 || gt[4] != 0 {
		return nil, fmt.Errorf("rotated rasters are not supported: %s", path)
	}
	if gt[1] <= 0 {
		return nil, fmt.Errorf("non-positive x resolution %v in %s", gt[1], path)
	}

	struc := ds.Structure()
	w, h := struc.SizeX, struc.SizeY

	xs := make([]float64, w)
	for i := range xs {
		xs[i] = gt[0] + (float64(i)+0.5)*gt[1]
	}
	// North-up files store rows top-down; flip so y ascends.
	flip := gt[5] < 0
	ys := make([]float64, h)
	for j := range ys {
		row := j
		if flip {
			row = h - 1 - j
		}
		ys[j] = gt[3] + (float64(row)+0.5)*gt[5]
	}

	dsBands := ds.Bands()
	names := bandNames
	if len(names) == 0 {
		names = make([]string, len(dsBands))
		for i := range names {
			names[i] = fmt.Sprintf("band_%d", i+1)
		}
	}
	if len(names) != len(dsBands) {
		return nil, fmt.Errorf("%d band names for %d bands in %s", len(names), len(dsBands), path)
	}

	data := make([][]float64, len(dsBands))
	for b := range dsBands {
		band := dsBands[b]
		buf := make([]float64, w*h)
		if err := band.Read(0, 0, buf, w, h); err != nil {
			logrus.Error(err)
			return nil, err
		}
		noData, ok := band.NoData()
		if !ok {
			logrus.Warn("NoData not set")
		}
		vals := make([]float64, w*h)
		for pix := range buf {
			row := pix / w
			col := pix % w
			iy := row
			if flip {
				iy = h - 1 - row
			}
			v := buf[pix]
			if ok && v == noData {
				v = math.NaN()
			}
			vals[iy*w+col] = v
		}
		data[b] = vals
	}

	return raster.New(names, xs, ys, data, epsg)
}

// WriteGeoTIFF exports a raster as a north-up GeoTIFF. NaN cells are written
// as the nodata value so readers restore them.
func WriteGeoTIFF(r *raster.Raster, path string) (err error) {
	godal.RegisterAll()

	w, h := r.Width(), r.Height()
	xRes := axisStep(r.X)
	yRes := axisStep(r.Y)

	ds, err := godal.Create(godal.GTiff, path, len(r.Bands), godal.Float64, w, h)
	if err != nil {
		logrus.Error(err)
		return err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	gt := [6]float64{r.X[0] - xRes/2, xRes, 0, r.Y[h-1] + yRes/2, 0, -yRes}
	if err := ds.SetGeoTransform(gt); err != nil {
		logrus.Error(err)
		return err
	}
	if r.EPSG != 0 {
		srs, err := godal.NewSpatialRefFromEPSG(r.EPSG)
		if err != nil {
			logrus.Error(err)
			return err
		}
		defer srs.Close()
		if err := ds.SetSpatialRef(srs); err != nil {
			logrus.Error(err)
			return err
		}
	}

	dsBands := ds.Bands()
	for b := range r.Bands {
		buf := make([]float64, w*h)
		for row := 0; row < h; row++ {
			iy := h - 1 - row
			for col := 0; col < w; col++ {
				v := r.Data[b][iy*w+col]
				if math.IsNaN(v) {
					v = geotiffNoData
				}
				buf[row*w+col] = v
			}
		}
		band := dsBands[b]
		if err := band.SetNoData(geotiffNoData); err != nil {
			logrus.Error(err)
			return err
		}
		if err := band.Write(0, 0, buf, w, h); err != nil {
			logrus.Error(err)
			return err
		}
	}
	return nil
}

// axisStep is the grid spacing of a coordinate axis, unit for degenerate
// single-coordinate axes.
func axisStep(axis []float64) float64 {
	if len(axis) < 2 {
		return 1
	}
	return axis[1] - axis[0]
}
