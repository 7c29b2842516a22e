package domain

import (
	"github.com/paulmach/orb/geojson"
)

// Category is the semantic classification of a flow feature.
type Category string

const (
	CategoryRiver Category = "river"
	CategoryCanal Category = "canal"
	CategoryWeir  Category = "weir"
)

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRiver, CategoryCanal, CategoryWeir:
		return true
	}
	return false
}

// Flows maps a four-digit year string to the mean flow for that year.
// Values are always finite; unparsable source cells become 0.
type Flows map[string]float64

// FlowTable maps a trimmed segment identifier to its yearly flows. It is
// the join key side of reconciliation: built once per run, read-only
// afterwards.
type FlowTable map[string]Flows

// FlowProperties carries the non-geometric attributes of a flow feature.
type FlowProperties struct {
	Name  string   `json:"name"`
	Type  Category `json:"type"`
	Flows Flows    `json:"flows"`
}

// FlowFeature is the merged output entity: one renderable segment with its
// geometry, category, display name, and flow series. Geometry is always a
// GeoJSON Point or LineString, never a multi-part shape.
type FlowFeature struct {
	ID         string            `json:"id"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties FlowProperties    `json:"properties"`
}

// FeatureID composes the feature ID from a segment identifier and its
// category. The suffix disambiguates identifiers shared across sources.
func FeatureID(identifier string, category Category) string {
	return identifier + "_" + string(category)
}
