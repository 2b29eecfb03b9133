package catalog

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const earthRadius = 6371000

// SearchBBox builds a geographic bounding box centered on (lon, lat) with
// roughly the given margin in meters on each side. The rectangle math runs on
// the sphere, so boxes near the poles clamp instead of overflowing latitude.
func SearchBBox(lon, lat, marginMeters float64) orb.Bound {
	center := s2.LatLngFromDegrees(lat, lon)
	span := s1.Angle(2 * marginMeters / earthRadius)
	rect := s2.RectFromCenterSize(center, s2.LatLng{Lat: span, Lng: span})
	lo, hi := rect.Lo(), rect.Hi()
	return orb.Bound{
		Min: orb.Point{lo.Lng.Degrees(), lo.Lat.Degrees()},
		Max: orb.Point{hi.Lng.Degrees(), hi.Lat.Degrees()},
	}
}
