package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGeometry_PointPassthrough(t *testing.T) {
	p := orb.Point{4.89, 52.37}

	got, err := NormalizeGeometry(p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestNormalizeGeometry_LineStringPassthrough(t *testing.T) {
	ls := orb.LineString{{1, 1}, {2, 2}, {3, 3}}

	got, err := NormalizeGeometry(ls)
	require.NoError(t, err)
	assert.Equal(t, ls, got)
}

func TestNormalizeGeometry_MultiLineStringCollapsesToFirstPart(t *testing.T) {
	mls := orb.MultiLineString{
		{{4, 4}, {5, 5}},
		{{6, 6}, {7, 7}},
	}

	got, err := NormalizeGeometry(mls)
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{4, 4}, {5, 5}}, got)
}

func TestNormalizeGeometry_EmptyMultiLineString(t *testing.T) {
	_, err := NormalizeGeometry(orb.MultiLineString{})
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestNormalizeGeometry_UnsupportedKinds(t *testing.T) {
	tests := []struct {
		name string
		geom orb.Geometry
		kind string
	}{
		{"polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, "Polygon"},
		{"multi point", orb.MultiPoint{{1, 1}}, "MultiPoint"},
		{"collection", orb.Collection{orb.Point{1, 1}}, "GeometryCollection"},
		{"nil", nil, "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeGeometry(tt.geom)
			require.ErrorIs(t, err, ErrUnsupportedGeometry)
			assert.Contains(t, err.Error(), tt.kind)
		})
	}
}
