// Command validate runs one reconciliation over a configured dataset and
// checks the output invariants the dashboard relies on: unique feature IDs,
// finite flow values, two-shape geometries, and known categories.
//
// Usage:
//
//	go run ./cmd/validate -table data/flow_table.csv -sources data/sources.json
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/paulmach/orb"

	fetchadapter "github.com/couchcryptid/waterflow-etl/internal/adapter/fetch"
	"github.com/couchcryptid/waterflow-etl/internal/config"
	"github.com/couchcryptid/waterflow-etl/internal/domain"
	"github.com/couchcryptid/waterflow-etl/internal/observability"
	"github.com/couchcryptid/waterflow-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	table := flag.String("table", "", "flow table locator (file path or URL)")
	sourcesFile := flag.String("sources", "", "geometry sources JSON file")
	timeout := flag.Duration("timeout", 60*time.Second, "overall run timeout")
	flag.Parse()

	if *table == "" || *sourcesFile == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "missing required flags: -table, -sources")
		os.Exit(2)
	}

	logger := observability.NewLogger("info", "text")
	metrics := observability.NewMetricsForTesting()

	sources, err := config.LoadSources(*sourcesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fetcher := fetchadapter.NewClient(30*time.Second, logger)
	reconciler := pipeline.NewReconciler(fetcher, *table, sources, logger, metrics)

	load := &phase{name: "load"}
	features, err := reconciler.Reconcile(ctx)
	if err != nil {
		load.errorf("reconciliation failed: %v", err)
	}

	phases := []*phase{
		load,
		checkIdentifiers(features),
		checkFlows(features),
		checkGeometry(features),
		checkCategories(features),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	printSummary(features)

	if failed {
		os.Exit(1)
	}
}

// checkIdentifiers verifies IDs are present, unique, and carry the
// category suffix.
func checkIdentifiers(features []domain.FlowFeature) *phase {
	p := &phase{name: "identifiers"}
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if f.ID == "" {
			p.errorf("feature with empty ID")
			continue
		}
		if seen[f.ID] {
			p.errorf("duplicate feature ID %s", f.ID)
		}
		seen[f.ID] = true
		if f.ID != domain.FeatureID(idPrefix(f), f.Properties.Type) {
			p.errorf("feature %s: ID does not end in _%s", f.ID, f.Properties.Type)
		}
	}
	return p
}

func idPrefix(f domain.FlowFeature) string {
	suffix := "_" + string(f.Properties.Type)
	if len(f.ID) <= len(suffix) {
		return f.ID
	}
	return f.ID[:len(f.ID)-len(suffix)]
}

// checkFlows verifies the flow mapping is present and every value finite.
func checkFlows(features []domain.FlowFeature) *phase {
	p := &phase{name: "flows"}
	for _, f := range features {
		if f.Properties.Flows == nil {
			p.errorf("feature %s: flows mapping absent", f.ID)
			continue
		}
		for year, v := range f.Properties.Flows {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("feature %s: non-finite flow for %s", f.ID, year)
			}
			if len(year) != 4 {
				p.errorf("feature %s: non-year flow key %q", f.ID, year)
			}
		}
	}
	return p
}

// checkGeometry verifies every feature is a point or a polyline with at
// least two coordinate pairs.
func checkGeometry(features []domain.FlowFeature) *phase {
	p := &phase{name: "geometry"}
	for _, f := range features {
		if f.Geometry == nil {
			p.errorf("feature %s: missing geometry", f.ID)
			continue
		}
		switch g := f.Geometry.Geometry().(type) {
		case orb.Point:
		case orb.LineString:
			if len(g) < 2 {
				p.errorf("feature %s: degenerate polyline with %d points", f.ID, len(g))
			}
		default:
			p.errorf("feature %s: geometry kind %s", f.ID, f.Geometry.Type)
		}
	}
	return p
}

func checkCategories(features []domain.FlowFeature) *phase {
	p := &phase{name: "categories"}
	for _, f := range features {
		if !f.Properties.Type.Valid() {
			p.errorf("feature %s: unknown category %q", f.ID, f.Properties.Type)
		}
		if f.Properties.Name == "" {
			p.errorf("feature %s: empty display name", f.ID)
		}
	}
	return p
}

func printSummary(features []domain.FlowFeature) {
	byCategory := make(map[domain.Category]int)
	withFlows := 0
	for _, f := range features {
		byCategory[f.Properties.Type]++
		if len(f.Properties.Flows) > 0 {
			withFlows++
		}
	}
	fmt.Printf("\n%d features (%d with flow series): %d river, %d canal, %d weir\n",
		len(features), withFlows,
		byCategory[domain.CategoryRiver], byCategory[domain.CategoryCanal], byCategory[domain.CategoryWeir])
}
