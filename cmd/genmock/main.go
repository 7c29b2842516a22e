// Command genmock writes a small deterministic water-flow dataset for local
// development and tests: a flow table CSV, one GeoJSON source per category
// (the weir source with a separate attribute sidecar, matching upstream
// shapefile conversions), and the sources file tying them together.
//
// Usage:
//
//	go run ./cmd/genmock -out data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type segment struct {
	id    string
	name  string
	flows []float64 // by year, starting at firstYear
	geom  orb.Geometry
}

const firstYear = 1979

var (
	rivers = []segment{
		{"R1", "Big River", []float64{100, 102, 98.5, 101, 97}, orb.LineString{{4.80, 52.40}, {4.82, 52.41}, {4.85, 52.43}}},
		{"R2", "North Branch", []float64{40, 42, 39, 41.5, 38}, orb.MultiLineString{
			{{4.85, 52.43}, {4.87, 52.45}},
			{{4.88, 52.46}, {4.90, 52.47}},
		}},
	}
	canals = []segment{
		{"C1", "Main Canal", []float64{10, 12, 11.5, 9, 10.5}, orb.LineString{{4.82, 52.41}, {4.83, 52.39}}},
		{"C2", "Ring Canal", []float64{6, 5.5, 7, 6.5, 6}, orb.LineString{{4.83, 52.39}, {4.86, 52.38}, {4.88, 52.37}}},
		// C3 has geometry but no flow row: exercises the empty-flows path.
		{"C3", "Disused Cut", nil, orb.LineString{{4.88, 52.37}, {4.89, 52.36}}},
	}
	weirs = []segment{
		{"W1", "First Weir", []float64{3, 3.2, 2.9, 3.1, 3}, orb.Point{4.82, 52.41}},
		{"W2", "Second Weir", []float64{1.5, 1.4, 1.6, 1.5, 1.45}, orb.Point{4.86, 52.38}},
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	if err := writeFlowTable(filepath.Join(*out, "flow_table.csv")); err != nil {
		return err
	}
	if err := writeGeoJSON(filepath.Join(*out, "rivers.geo.json"), rivers, true); err != nil {
		return err
	}
	if err := writeGeoJSON(filepath.Join(*out, "canal_system.geo.json"), canals, true); err != nil {
		return err
	}
	// Weir points carry their attributes in a sidecar, like the upstream
	// shapefile exports do.
	if err := writeGeoJSON(filepath.Join(*out, "weir_points.geo.json"), weirs, false); err != nil {
		return err
	}
	if err := writeSidecar(filepath.Join(*out, "weir_points.attrs.json"), weirs); err != nil {
		return err
	}
	if err := writeSources(filepath.Join(*out, "sources.json")); err != nil {
		return err
	}

	fmt.Printf("wrote fixture dataset to %s\n", *out)
	return nil
}

func writeFlowTable(path string) error {
	var b strings.Builder
	b.WriteString("MapID,Name")
	years := len(rivers[0].flows)
	for y := 0; y < years; y++ {
		fmt.Fprintf(&b, ",%d", firstYear+y)
	}
	b.WriteString("\n")

	for _, seg := range all() {
		if seg.flows == nil {
			continue
		}
		b.WriteString(seg.id + "," + seg.name)
		for _, v := range seg.flows {
			fmt.Fprintf(&b, ",%g", v)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeGeoJSON(path string, segments []segment, withAttrs bool) error {
	fc := geojson.NewFeatureCollection()
	for _, seg := range segments {
		f := geojson.NewFeature(seg.geom)
		if withAttrs {
			f.Properties = geojson.Properties{"MapID": seg.id, "NAME": seg.name}
		} else {
			f.Properties = geojson.Properties{}
		}
		fc.Append(f)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSidecar(path string, segments []segment) error {
	attrs := make([]map[string]any, len(segments))
	for i, seg := range segments {
		attrs[i] = map[string]any{"MapID": seg.id, "NAME": seg.name, "TYPE": "weir"}
	}
	data, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSources(path string) error {
	sources := []map[string]string{
		{"name": "rivers", "geometry": "data/rivers.geo.json"},
		{"name": "canals", "geometry": "data/canal_system.geo.json"},
		{"name": "weirs", "geometry": "data/weir_points.geo.json", "attributes": "data/weir_points.attrs.json"},
	}
	data, err := json.MarshalIndent(sources, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func all() []segment {
	var out []segment
	out = append(out, rivers...)
	out = append(out, canals...)
	out = append(out, weirs...)
	return out
}
