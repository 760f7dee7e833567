// Package monitor exposes prometheus counters for the serve mode.
package monitor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"pco2proc/internal/pipeline"
)

var (
	FramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pco2proc_frames_total",
			Help: "Frames seen, by outcome (blank, measurement, malformed, dropped).",
		},
		[]string{"outcome"},
	)

	RecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pco2proc_records_total",
		Help: "Valid measurement records emitted.",
	})

	InvalidRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pco2proc_invalid_records_total",
		Help: "Measurement records invalidated by domain or missing-blank errors.",
	})

	RequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pco2proc_process_duration_seconds",
		Help:    "Wall time of one process request.",
		Buckets: prometheus.DefBuckets,
	})
)

var registerOnce sync.Once

// Register installs the collectors on the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FramesTotal,
			RecordsTotal,
			InvalidRecordsTotal,
			RequestDuration,
		)
	})
}

// Observe folds one run's stats into the counters.
func Observe(s pipeline.Stats) {
	FramesTotal.WithLabelValues("blank").Add(float64(s.Blanks))
	FramesTotal.WithLabelValues("measurement").Add(float64(s.Measurements))
	FramesTotal.WithLabelValues("malformed").Add(float64(s.Malformed))
	FramesTotal.WithLabelValues("dropped").Add(float64(s.Dropped))
	RecordsTotal.Add(float64(s.Measurements - s.Invalid))
	InvalidRecordsTotal.Add(float64(s.Invalid))
}
