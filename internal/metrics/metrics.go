// Package metrics exposes Prometheus instruments for reconciliation runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sells-group/recon-cli/internal/model"
)

// Run outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeConfigError = "config_error"
	OutcomeError       = "error"
)

// Recorder holds the run instruments. A nil *Recorder discards everything.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	matches  *prometheus.CounterVec
	critical prometheus.Gauge
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_runs_total",
			Help: "Reconciliation runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recon_run_duration_seconds",
			Help:    "Wall time of a reconciliation run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_match_records_total",
			Help: "Match records produced, by match type.",
		}, []string{"match_type"}),
		critical: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recon_critical_products",
			Help: "Critical products in the most recent decision report.",
		}),
	}
	reg.MustRegister(r.runs, r.duration, r.matches, r.critical)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns a Recorder registered with the global Prometheus registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// ObserveRun counts a finished run and its duration.
func (r *Recorder) ObserveRun(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// ObserveMatches counts match records by type.
func (r *Recorder) ObserveMatches(records []model.MatchRecord) {
	if r == nil {
		return
	}
	for _, m := range records {
		r.matches.WithLabelValues(string(m.MatchType)).Inc()
	}
}

// ObserveDecision records the decision report's match records and sets the
// critical product gauge.
func (r *Recorder) ObserveDecision(d model.DecisionReport) {
	if r == nil {
		return
	}
	r.ObserveMatches(d.Matches)
	r.critical.Set(float64(len(d.CriticalProducts)))
}
