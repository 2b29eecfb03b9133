// Package regrid builds uniform target grids over a region of interest and
// resamples rasters onto them so that scenes acquired on different native
// grids become directly comparable cell-for-cell.
package regrid

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// ROI is a region of interest: a center point in the raster's reference
// system plus a symmetric buffer distance along each spatial axis. No check
// is made that the box lies inside any particular raster's extent; cells
// outside the source coverage simply interpolate to missing values.
type ROI struct {
	X      float64
	Y      float64
	Buffer float64
}

// Bounds returns the axis-aligned bounding box center ± buffer.
func (r ROI) Bounds() (minX, minY, maxX, maxY float64) {
	return r.X - r.Buffer, r.Y - r.Buffer, r.X + r.Buffer, r.Y + r.Buffer
}

// PointFromLonLat transforms a geographic longitude/latitude pair into the
// reference system identified by the EPSG code, typically to seed an ROI in
// a raster's native coordinates.
func PointFromLonLat(lon, lat float64, epsg int) (x, y float64, err error) {
	src, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return 0, 0, fmt.Errorf("regrid: %w", err)
	}
	defer src.Close()
	dst, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return 0, 0, fmt.Errorf("regrid: %w", err)
	}
	defer dst.Close()

	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return 0, 0, fmt.Errorf("regrid: %w", err)
	}
	defer tr.Close()

	xs := []float64{lon}
	ys := []float64{lat}
	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, fmt.Errorf("regrid: transform to EPSG:%d: %w", epsg, err)
	}
	return xs[0], ys[0], nil
}

// UTMZoneEPSG picks the EPSG code of the UTM zone containing the given
// geographic point, northern or southern hemisphere variant as appropriate.
func UTMZoneEPSG(lon, lat float64) int {
	zone := int((lon+180)/6) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}
