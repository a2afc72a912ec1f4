package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "match_predictor"

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	polls             prometheus.Counter
	pollFailures      prometheus.Counter
	statusTransitions *prometheus.CounterVec
	predictionsScored *prometheus.CounterVec
	scoringFailures   prometheus.Counter
	scoringDuration   prometheus.Histogram
	trackedMatches    prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		polls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "polls_total",
			Help:      "Snapshot polls attempted by the match listener.",
		}),
		pollFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "poll_failures_total",
			Help:      "Snapshot polls that failed.",
		}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "status_transitions_total",
			Help:      "Observed match status transitions by target status.",
		}, []string{"to"}),
		predictionsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_scored_total",
			Help:      "Predictions scored by outcome.",
		}, []string{"outcome"}),
		scoringFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_failures_total",
			Help:      "Predictions that could not be scored.",
		}),
		scoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_duration_seconds",
			Help:      "Wall time spent scoring one finished match.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		trackedMatches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tracked_matches",
			Help:      "Matches currently held in the listener status cache.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePoll(err error) {
	if m == nil {
		return
	}
	m.polls.Inc()
	if err != nil {
		m.pollFailures.Inc()
	}
}

func (m *Metrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) SetTrackedMatches(n int) {
	if m == nil {
		return
	}
	m.trackedMatches.Set(float64(n))
}

func (m *Metrics) ObservePredictionScored(outcome string) {
	if m == nil {
		return
	}
	m.predictionsScored.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveScoringFailure() {
	if m == nil {
		return
	}
	m.scoringFailures.Inc()
}

func (m *Metrics) ObserveScoringDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.scoringDuration.Observe(d.Seconds())
}
