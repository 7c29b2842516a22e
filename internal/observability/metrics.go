package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reconciliation pipeline.
type Metrics struct {
	TableRowsParsed prometheus.Counter

	SourcesProcessed *prometheus.CounterVec // labels: source, outcome={success,error}
	FeaturesMerged   *prometheus.CounterVec // labels: category={river,canal,weir}
	FeaturesSkipped  *prometheus.CounterVec // labels: reason={missing_identifier,unsupported_geometry}
	UnmatchedFlows   prometheus.Counter

	FetchDuration     *prometheus.HistogramVec // labels: kind={table,geometry}
	ReconcileDuration prometheus.Histogram

	DatasetLoaded   prometheus.Gauge
	DatasetFeatures prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		TableRowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterflow_etl",
			Name:      "table_rows_parsed_total",
			Help:      "Flow table rows that produced a flow mapping.",
		}),
		SourcesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterflow_etl",
			Name:      "sources_processed_total",
			Help:      "Geometry sources processed by name and outcome.",
		}, []string{"source", "outcome"}),
		FeaturesMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterflow_etl",
			Name:      "features_merged_total",
			Help:      "Flow features emitted by category.",
		}, []string{"category"}),
		FeaturesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterflow_etl",
			Name:      "features_skipped_total",
			Help:      "Geometry features dropped during reconciliation by reason.",
		}, []string{"reason"}),
		UnmatchedFlows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterflow_etl",
			Name:      "unmatched_flows_total",
			Help:      "Features whose identifier has no flow table row (empty flows substituted).",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waterflow_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration by kind.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waterflow_etl",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a complete reconciliation run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterflow_etl",
			Name:      "dataset_loaded",
			Help:      "1 once the flow feature dataset has been built, 0 before.",
		}),
		DatasetFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterflow_etl",
			Name:      "dataset_features",
			Help:      "Number of flow features in the loaded dataset.",
		}),
	}

	prometheus.MustRegister(
		m.TableRowsParsed,
		m.SourcesProcessed,
		m.FeaturesMerged,
		m.FeaturesSkipped,
		m.UnmatchedFlows,
		m.FetchDuration,
		m.ReconcileDuration,
		m.DatasetLoaded,
		m.DatasetFeatures,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		TableRowsParsed:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterflow_etl", Name: "table_rows_parsed_total"}),
		SourcesProcessed:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterflow_etl", Name: "sources_processed_total"}, []string{"source", "outcome"}),
		FeaturesMerged:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterflow_etl", Name: "features_merged_total"}, []string{"category"}),
		FeaturesSkipped:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterflow_etl", Name: "features_skipped_total"}, []string{"reason"}),
		UnmatchedFlows:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterflow_etl", Name: "unmatched_flows_total"}),
		FetchDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "waterflow_etl", Name: "fetch_duration_seconds"}, []string{"kind"}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "waterflow_etl", Name: "reconcile_duration_seconds"}),
		DatasetLoaded:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterflow_etl", Name: "dataset_loaded"}),
		DatasetFeatures:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterflow_etl", Name: "dataset_features"}),
	}
}
