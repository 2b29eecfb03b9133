package regrid

import "fmt"

// Grid is an evenly spaced target coordinate grid. Each axis starts at the
// bounding box minimum and steps by Res until, but not including, the box
// maximum.
type Grid struct {
	X   []float64
	Y   []float64
	Res float64
}

// NewGrid builds the target grid covering a bounding box at the given
// resolution.
func NewGrid(minX, minY, maxX, maxY, res float64) (*Grid, error) {
	if res <= 0 {
		return nil, fmt.Errorf("regrid: resolution must be positive, got %v", res)
	}
	return &Grid{
		X:   arange(minX, maxX, res),
		Y:   arange(minY, maxY, res),
		Res: res,
	}, nil
}

// GridFromROI builds the target grid covering the ROI's bounding box.
func GridFromROI(roi ROI, res float64) (*Grid, error) {
	minX, minY, maxX, maxY := roi.Bounds()
	return NewGrid(minX, minY, maxX, maxY, res)
}

// arange generates start + i*step for i = 0, 1, ... while the value stays
// strictly below stop.
func arange(start, stop, step float64) []float64 {
	var vals []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop {
			break
		}
		vals = append(vals, v)
	}
	return vals
}
