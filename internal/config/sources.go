package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/waterflow-etl/internal/domain"
)

// GeometrySource describes one geometry input: a GeoJSON locator, an
// optional co-located attribute sidecar, and an optional category override.
// When Category is empty the category is classified from the geometry
// locator and each feature's attributes.
type GeometrySource struct {
	Name       string          `json:"name"`
	Geometry   string          `json:"geometry"`
	Attributes string          `json:"attributes,omitempty"`
	Category   domain.Category `json:"category,omitempty"`
}

// LoadSources reads the ordered geometry-source list from a JSON file.
func LoadSources(path string) ([]GeometrySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sources []GeometrySource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	for i, src := range sources {
		if src.Geometry == "" {
			return nil, fmt.Errorf("sources file %s: entry %d has no geometry locator", path, i)
		}
		if src.Category != "" && !src.Category.Valid() {
			return nil, fmt.Errorf("sources file %s: entry %d has unknown category %q", path, i, src.Category)
		}
	}

	return sources, nil
}
