package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service.
type Metrics struct {
	PredictionsTotal  *prometheus.CounterVec // labels: kind={point,area}, outcome={ok,error,out_of_zone,empty}
	ConfidenceScore   prometheus.Histogram
	InferenceDuration prometheus.Histogram

	// Area grid metrics.
	GridPointsEvaluated prometheus.Histogram // surviving points per area request
	GridCellsSkipped    prometheus.Counter   // cells dropped by zone filtering

	// Boundary and geocoding metrics.
	BoundaryResolutions *prometheus.CounterVec // labels: stage={reverse_geocode,forward_geocode,bounding_box,osm_geometry,circle,none}
	GeocodeCache        *prometheus.CounterVec // labels: method={search,reverse}, result={hit,miss}

	// Prediction event publishing.
	EventsPublished prometheus.Counter
	EventErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PredictionsTotal,
		m.ConfidenceScore,
		m.InferenceDuration,
		m.GridPointsEvaluated,
		m.GridCellsSkipped,
		m.BoundaryResolutions,
		m.GeocodeCache,
		m.EventsPublished,
		m.EventErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "predictions_total",
			Help:      "Prediction requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ConfidenceScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "groundwater",
			Name:      "confidence_score",
			Help:      "Confidence percentage of successful predictions.",
			Buckets:   []float64{50, 60, 70, 75, 80, 85, 90, 95, 98},
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "groundwater",
			Name:      "inference_duration_seconds",
			Help:      "Round-trip duration of model service calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GridPointsEvaluated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "groundwater",
			Name:      "grid_points_evaluated",
			Help:      "Grid points surviving zone filtering per area request.",
			Buckets:   []float64{0, 1, 5, 10, 15, 20, 25},
		}),
		GridCellsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "grid_cells_skipped_total",
			Help:      "Grid cells dropped by zone filtering.",
		}),
		BoundaryResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "boundary_resolutions_total",
			Help:      "Boundary resolutions by the stage that produced the polygon.",
		}, []string{"stage"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "prediction_events_published_total",
			Help:      "Prediction events published to the event stream.",
		}),
		EventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundwater",
			Name:      "prediction_event_errors_total",
			Help:      "Failed prediction event publishes.",
		}),
	}
}
