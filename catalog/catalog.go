// Package catalog locates imagery. It speaks to STAC search endpoints for
// scene discovery and reads a local YAML catalog that materializes small
// sample rasters from disk without network access.
package catalog

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Band describes one spectral band of an asset, following the eo extension.
type Band struct {
	Name             string  `json:"name"`
	CommonName       string  `json:"common_name,omitempty"`
	Description      string  `json:"description,omitempty"`
	CenterWavelength float64 `json:"center_wavelength,omitempty"`
	FullWidthHalfMax float64 `json:"full_width_half_max,omitempty"`
}

// Asset is a downloadable file attached to an item, usually one band.
type Asset struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
	Bands []Band `json:"eo:bands,omitempty"`
}

// Properties carries the searchable scene metadata.
type Properties struct {
	Datetime   string  `json:"datetime"`
	Platform   string  `json:"platform,omitempty"`
	CloudCover float64 `json:"eo:cloud_cover,omitempty"`
	EPSG       int     `json:"proj:epsg,omitempty"`
}

// Item is one scene returned by a search, a GeoJSON feature with typed
// properties and per-band assets.
type Item struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry"`
	BBox       []float64         `json:"bbox,omitempty"`
	Properties Properties        `json:"properties"`
	Assets     map[string]Asset  `json:"assets"`
}

// BandAsset returns the asset whose eo:bands common name matches name,
// falling back to the asset key itself.
func (it Item) BandAsset(name string) (Asset, bool) {
	for _, a := range it.Assets {
		for _, b := range a.Bands {
			if b.CommonName == name || b.Name == name {
				return a, true
			}
		}
	}
	a, ok := it.Assets[name]
	return a, ok
}

// Covers reports whether the item footprint contains the point (lon, lat).
func (it Item) Covers(lon, lat float64) bool {
	if it.Geometry == nil {
		return false
	}
	pt := orb.Point{lon, lat}
	switch g := it.Geometry.Geometry().(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}

// FilterCovering keeps only the items whose footprint contains (lon, lat).
func FilterCovering(items []Item, lon, lat float64) []Item {
	var kept []Item
	for _, it := range items {
		if it.Covers(lon, lat) {
			kept = append(kept, it)
		}
	}
	return kept
}
