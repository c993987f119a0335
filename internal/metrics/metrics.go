// Package metrics exposes prometheus instrumentation for the fetch pipeline
// and the job scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobRuns       *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	RemoteFetches *prometheus.CounterVec
}

// New registers the pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		JobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "gtstats_job_runs_total",
			Help: "Scheduler job invocations by outcome.",
		}, []string{"job", "status"}),
		JobDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gtstats_job_duration_seconds",
			Help:    "Wall-clock duration of completed job runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job"}),
		RemoteFetches: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "gtstats_remote_fetches_total",
			Help: "Remote endpoint calls by outcome.",
		}, []string{"endpoint", "status"}),
	}
}

// Job run outcomes
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)
