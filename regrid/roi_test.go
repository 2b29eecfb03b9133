package regrid

import (
	"math"
	"testing"
)

func TestROIBounds(t *testing.T) {
	roi := ROI{X: 351400, Y: 4283000, Buffer: 1500}

	minX, minY, maxX, maxY := roi.Bounds()
	if minX != 349900 || maxX != 352900 {
		t.Errorf("got x bounds [%v, %v], want [349900, 352900]", minX, maxX)
	}
	if minY != 4281500 || maxY != 4284500 {
		t.Errorf("got y bounds [%v, %v], want [4281500, 4284500]", minY, maxY)
	}
}

func TestUTMZoneEPSG(t *testing.T) {
	// Walker Lake sits in zone 11 north.
	if got := UTMZoneEPSG(-118.71, 38.69); got != 32611 {
		t.Errorf("got %d, want 32611", got)
	}
	// Southern hemisphere selects the 327xx range.
	if got := UTMZoneEPSG(18.42, -33.92); got != 32734 {
		t.Errorf("got %d, want 32734", got)
	}
	// The antimeridian clamps to zone 60.
	if got := UTMZoneEPSG(180, 10); got != 32660 {
		t.Errorf("got %d, want 32660", got)
	}
}

func TestPointFromLonLat(t *testing.T) {
	// On a UTM zone's central meridian the easting is the 500 km false
	// easting by definition; the northing at 60N is a published constant.
	x, y, err := PointFromLonLat(15, 60, 32633)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-500000) > 0.1 {
		t.Errorf("got easting %v, want 500000", x)
	}
	if math.Abs(y-6651411.2) > 5 {
		t.Errorf("got northing %v, want about 6651411", y)
	}
}
