// Package metrics exposes pipeline counters and latencies to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

const namespace = "resonance"

// Stage names used as the stage label.
const (
	StageFetch    = "fetch"
	StageProfile  = "profile"
	StageState    = "state"
	StageAssemble = "assemble"
)

// #region metrics

// Metrics holds the engine's collectors.
type Metrics struct {
	Requests  *prometheus.CounterVec   // by operation and outcome
	Duration  *prometheus.HistogramVec // by stage
	Coherence prometheus.Histogram
	Patterns  *prometheus.CounterVec // by pattern type
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which suits tests and embedded use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Engine operations by outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		Coherence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "coherence_score",
			Help:      "Coherence score of assembled readings.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		Patterns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_total",
			Help:      "Interference pattern of assembled readings.",
		}, []string{"pattern"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration, m.Coherence, m.Patterns)
	}
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// #endregion metrics

// #region record

// Outcome labels err by its error kind; nil is "ok".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return string(errs.KindValidation)
	case errors.Is(err, errs.ErrMissingInput):
		return string(errs.KindMissingInput)
	case errors.Is(err, errs.ErrUpstream):
		return string(errs.KindUpstream)
	case errors.Is(err, errs.ErrInvariant):
		return string(errs.KindInvariant)
	}
	return "error"
}

// ObserveRequest counts one operation.
func (m *Metrics) ObserveRequest(operation string, err error) {
	m.Requests.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveStage records the time since start against stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.Duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveReading records the outcome distribution of r.
func (m *Metrics) ObserveReading(r reading.Reading) {
	m.Coherence.Observe(float64(r.Coherence.Score))
	m.Patterns.WithLabelValues(string(r.Pattern.Type)).Inc()
}

// #endregion record
