package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	authAttempts   *prometheus.CounterVec
	snapshotReads  prometheus.Counter
	snapshotWrites prometheus.Counter
	requestSeconds *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accountstore_auth_attempts_total",
			Help: "Signature challenge attempts by result.",
		}, []string{"result"}),
		snapshotReads: factory.NewCounter(prometheus.CounterOpts{
			Name: "accountstore_snapshot_reads_total",
			Help: "Snapshot fetches served.",
		}),
		snapshotWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "accountstore_snapshot_writes_total",
			Help: "Snapshot replacements applied.",
		}),
		requestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accountstore_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}
