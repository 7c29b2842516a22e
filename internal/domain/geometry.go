package domain

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrUnsupportedGeometry marks geometry kinds the renderer cannot
	// draw (polygons, multi-points, collections).
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrEmptyGeometry marks a multi-part polyline with zero parts.
	ErrEmptyGeometry = errors.New("empty multi-part polyline")
)

// NormalizeGeometry reduces a raw geometry to one of the two canonical
// shapes: a point or a single polyline. Points and polylines pass through
// unchanged. Multi-part polylines collapse to their first part only — the
// remaining parts are discarded, trading geometric fidelity for a
// two-shape rendering model. Everything else is rejected with
// [ErrUnsupportedGeometry] wrapping the GeoJSON kind name.
func NormalizeGeometry(g orb.Geometry) (orb.Geometry, error) {
	switch t := g.(type) {
	case orb.Point:
		return t, nil
	case orb.LineString:
		return t, nil
	case orb.MultiLineString:
		if len(t) == 0 {
			return nil, ErrEmptyGeometry
		}
		return t[0], nil
	default:
		kind := "nil"
		if g != nil {
			kind = g.GeoJSONType()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, kind)
	}
}
