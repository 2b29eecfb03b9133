// Package render is the presentation sink: it turns rasters into colormapped
// images and carries tapped points back toward the region-of-interest
// selector. Nothing downstream consumes its output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type rampStop struct {
	Col colorful.Color
	Pos float64
}

// Colormap maps a normalized value in [0, 1] to a color by blending between
// gradient stops in Luv space.
type Colormap struct {
	name  string
	stops []rampStop
}

// At returns the ramp color for t, clamped to the ramp ends.
func (c Colormap) At(t float64) colorful.Color {
	if t <= c.stops[0].Pos {
		return c.stops[0].Col
	}
	for i := 0; i < len(c.stops)-1; i++ {
		lo, hi := c.stops[i], c.stops[i+1]
		if t <= hi.Pos {
			span := hi.Pos - lo.Pos
			frac := 0.0
			if span > 0 {
				frac = (t - lo.Pos) / span
			}
			return lo.Col.BlendLuv(hi.Col, frac).Clamped()
		}
	}
	return c.stops[len(c.stops)-1].Col
}

func (c Colormap) String() string { return c.name }

func mustHex(s string) colorful.Color {
	col, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return col
}

func newRamp(name string, hexes ...string) Colormap {
	stops := make([]rampStop, len(hexes))
	for i, h := range hexes {
		stops[i] = rampStop{mustHex(h), float64(i) / float64(len(hexes)-1)}
	}
	return Colormap{name: name, stops: stops}
}

var colormaps = map[string]Colormap{
	"viridis": newRamp("viridis", "#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"),
	"magma":   newRamp("magma", "#000004", "#51127c", "#b73779", "#fc8961", "#fcfdbf"),
	"rdbu":    newRamp("rdbu", "#b2182b", "#ef8a62", "#f7f7f7", "#67a9cf", "#2166ac"),
	"gray":    newRamp("gray", "#000000", "#ffffff"),
}

// ColormapByName looks a ramp up case-insensitively.
func ColormapByName(name string) (Colormap, error) {
	cm, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q, choose from: %s", name, strings.Join(ColormapNames(), ", "))
	}
	return cm, nil
}

// ColormapNames lists the available ramps in sorted order.
func ColormapNames() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
