// Package domain models the water-flow feature dataset: historical flow
// time series for river, canal, and weir segments joined with their map
// geometries.
//
// # Data Sources
//
// The flow table is a CSV export of yearly mean flows, one row per physical
// segment. The header row carries an identifier column (conventionally
// "MapID") and one column per four-digit year:
//
//	MapID,Name,1979,1980,1981
//	C1,Main Canal,10,12,11.5
//
// Columns whose header is not exactly four digits are ignored. Cells that
// fail to parse as a float (including empty cells) are stored as 0, never
// NaN. Rows without an identifier are skipped.
//
// Geometry sources are GeoJSON feature collections, one file per segment
// category, optionally accompanied by a co-located attribute sidecar (a
// JSON array of attribute objects aligned by feature index, produced when
// the upstream shapefile conversion keeps geometry and attribute tables
// separate).
//
// # Attribute Conventions
//
// Upstream attribute tables are inconsistent about key casing and naming,
// so identifier and display-name lookups probe an ordered alias list
// ([IdentifierKeys], [NameKeys]) instead of a single key. Identifiers are
// compared after trimming surrounding whitespace.
//
// # Categories
//
// Every feature is classified as river, canal, or weir. Classification is
// driven by the source label (usually the file path): sources labeled
// "point" or "weir" hold weir gauges, then "canal" and "river" match their
// respective categories, and anything else defaults to canal. See
// [Classify].
//
// # Geometry
//
// Rendered features are either a single polyline or a point. Multi-part
// polylines are collapsed to their first part — a deliberate loss of
// fidelity that keeps the rendering model to two shapes. See
// [NormalizeGeometry].
//
// # ID Scheme
//
// Feature IDs are "<identifier>_<category>". The category suffix keeps IDs
// unique when the same segment identifier appears in two sources (e.g. a
// canal that is also, erroneously, listed as a river source).
package domain
