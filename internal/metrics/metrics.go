// Package metrics exposes Prometheus collectors for the generation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Recorder tracks generation run outcomes.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	urls     prometheus.Gauge
}

// NewRecorder creates and registers the collectors on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitemap_generation_runs_total",
			Help: "Generation runs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitemap_generation_duration_seconds",
			Help:    "Wall time of generation runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		urls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_urls_count",
			Help: "URL count of the last published sitemap.",
		}),
	}

	reg.MustRegister(r.runs, r.duration, r.urls)
	return r
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SetURLCount updates the published URL count gauge.
func (r *Recorder) SetURLCount(n int) {
	if r == nil {
		return
	}
	r.urls.Set(float64(n))
}
