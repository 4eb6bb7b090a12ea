package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glickolab",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Queue job executions by outcome",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glickolab",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Queue job execution duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(JobRuns, JobDuration)
	})
}
