package domain

import (
	"strconv"
	"strings"
)

// Alias lists for probing upstream attribute bags. Order is priority order;
// extend these lists (rather than adding code branches) when a new source
// spells a key differently.
var (
	// IdentifierKeys are the known spellings of the segment identifier.
	IdentifierKeys = []string{"MapID", "MAPID", "MapId", "mapid", "Map_ID", "ID"}

	// NameKeys are the known spellings of the display name.
	NameKeys = []string{"NAME", "Name", "name", "LABEL", "SectionName"}

	// TypeKeys are the known spellings of the feature-type attribute
	// consulted by the classifier for point sources.
	TypeKeys = []string{"TYPE", "Type", "type"}
)

// UnknownName is the display name used when no name alias matches.
const UnknownName = "Unknown"

// ProbeString checks keys in order against attrs and returns the first
// value that renders to a non-empty string. Numeric values are accepted
// because some attribute tables store identifiers as numbers.
func ProbeString(attrs map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := attrs[key]
		if !ok {
			continue
		}
		if s, ok := stringify(v); ok {
			return s, true
		}
	}
	return "", false
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		// JSON numbers decode as float64; integral identifiers should not
		// pick up a ".000000" suffix.
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}
