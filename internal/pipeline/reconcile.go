// Package pipeline joins the tabular flow series with the geometry sources
// and produces the flat flow-feature collection the dashboard consumes.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/waterflow-etl/internal/config"
	"github.com/couchcryptid/waterflow-etl/internal/domain"
	"github.com/couchcryptid/waterflow-etl/internal/observability"
)

// Fetcher retrieves the raw payload behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Reconciler builds the merged flow-feature collection from one flow table
// and an ordered list of geometry sources.
type Reconciler struct {
	fetcher      Fetcher
	tableLocator string
	sources      []config.GeometrySource
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewReconciler creates a Reconciler over the given inputs.
func NewReconciler(fetcher Fetcher, tableLocator string, sources []config.GeometrySource, logger *slog.Logger, metrics *observability.Metrics) *Reconciler {
	return &Reconciler{
		fetcher:      fetcher,
		tableLocator: tableLocator,
		sources:      sources,
		logger:       logger,
		metrics:      metrics,
	}
}

// Reconcile fetches and joins all sources. Only a flow table fetch or
// decode failure aborts the run; a failing geometry source contributes
// zero features and the rest are still processed. Output order is
// deterministic: sources in configuration order, features in payload
// order within each source.
func (r *Reconciler) Reconcile(ctx context.Context) ([]domain.FlowFeature, error) {
	start := time.Now()

	table, err := r.loadFlowTable(ctx)
	if err != nil {
		return nil, err
	}

	// Sources are independent, so fetch and decode them with overlap.
	// Each goroutine writes only its own slot; order is restored below.
	perSource := make([][]domain.FlowFeature, len(r.sources))
	var wg sync.WaitGroup
	for i, src := range r.sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()

			features, err := r.processSource(ctx, src, table)
			if err != nil {
				r.logger.Error("geometry source failed, contributing zero features",
					"source", src.Name, "geometry", src.Geometry, "error", err)
				r.metrics.SourcesProcessed.WithLabelValues(src.Name, "error").Inc()
				return
			}
			perSource[i] = features
			r.metrics.SourcesProcessed.WithLabelValues(src.Name, "success").Inc()
		}()
	}
	wg.Wait()

	var merged []domain.FlowFeature
	for _, features := range perSource {
		merged = append(merged, features...)
	}

	r.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("reconciliation complete",
		"sources", len(r.sources), "features", len(merged), "duration", time.Since(start))

	return merged, nil
}

// loadFlowTable fetches and parses the tabular source. Any failure here is
// fatal for the run.
func (r *Reconciler) loadFlowTable(ctx context.Context) (domain.FlowTable, error) {
	fetchStart := time.Now()
	data, err := r.fetcher.Fetch(ctx, r.tableLocator)
	if err != nil {
		return nil, fmt.Errorf("fetch flow table: %w", err)
	}
	r.metrics.FetchDuration.WithLabelValues("table").Observe(time.Since(fetchStart).Seconds())

	table, err := domain.ParseFlowTable(data, r.logger)
	if err != nil {
		return nil, fmt.Errorf("parse flow table: %w", err)
	}

	r.metrics.TableRowsParsed.Add(float64(len(table)))
	r.logger.Info("flow table loaded", "locator", r.tableLocator, "rows", len(table))
	return table, nil
}

// processSource fetches one geometry source and joins its features against
// the flow table. The geometry payload and its attribute sidecar (when
// configured) are one retrieval unit: if either fails the source fails.
func (r *Reconciler) processSource(ctx context.Context, src config.GeometrySource, table domain.FlowTable) ([]domain.FlowFeature, error) {
	fetchStart := time.Now()

	raw, err := r.fetcher.Fetch(ctx, src.Geometry)
	if err != nil {
		return nil, fmt.Errorf("fetch geometry: %w", err)
	}

	var sidecar []map[string]any
	if src.Attributes != "" {
		attrRaw, err := r.fetcher.Fetch(ctx, src.Attributes)
		if err != nil {
			return nil, fmt.Errorf("fetch attributes: %w", err)
		}
		if err := json.Unmarshal(attrRaw, &sidecar); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	r.metrics.FetchDuration.WithLabelValues("geometry").Observe(time.Since(fetchStart).Seconds())

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	features := make([]domain.FlowFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		attrs := mergeAttributes(f.Properties, sidecar, i)

		identifier, ok := domain.ProbeString(attrs, domain.IdentifierKeys)
		if !ok {
			r.logger.Warn("skipping feature without identifier", "source", src.Name, "index", i)
			r.metrics.FeaturesSkipped.WithLabelValues("missing_identifier").Inc()
			continue
		}

		flows, ok := table[identifier]
		if !ok {
			r.logger.Info("no flow series for identifier, substituting empty flows",
				"source", src.Name, "identifier", identifier)
			r.metrics.UnmatchedFlows.Inc()
			flows = domain.Flows{}
		}

		name, ok := domain.ProbeString(attrs, domain.NameKeys)
		if !ok {
			name = domain.UnknownName
		}

		category := src.Category
		if category == "" {
			category = domain.Classify(src.Geometry, attrs)
		}

		geom, err := domain.NormalizeGeometry(f.Geometry)
		if err != nil {
			r.logger.Warn("skipping feature with unusable geometry",
				"source", src.Name, "identifier", identifier, "error", err)
			r.metrics.FeaturesSkipped.WithLabelValues("unsupported_geometry").Inc()
			continue
		}

		features = append(features, domain.FlowFeature{
			ID:       domain.FeatureID(identifier, category),
			Geometry: geojson.NewGeometry(geom),
			Properties: domain.FlowProperties{
				Name:  name,
				Type:  category,
				Flows: flows,
			},
		})
		r.metrics.FeaturesMerged.WithLabelValues(string(category)).Inc()
	}

	r.logger.Info("geometry source processed",
		"source", src.Name, "decoded", len(fc.Features), "merged", len(features))
	return features, nil
}

// mergeAttributes overlays the sidecar attributes for feature index i onto
// the feature's embedded properties. Sidecar values win on key collisions.
func mergeAttributes(props geojson.Properties, sidecar []map[string]any, i int) map[string]any {
	if len(sidecar) == 0 {
		return props
	}

	merged := make(map[string]any, len(props)+4)
	for k, v := range props {
		merged[k] = v
	}
	if i < len(sidecar) {
		for k, v := range sidecar[i] {
			merged[k] = v
		}
	}
	return merged
}
