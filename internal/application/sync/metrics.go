package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts flush outcomes per collection.
type Metrics struct {
	FlushPasses     prometheus.Counter
	EntitiesFlushed *prometheus.CounterVec
	FlushFailures   *prometheus.CounterVec
}

// NewMetrics creates flush metrics registered on reg. A nil registerer
// creates unregistered collectors, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FlushPasses: factory.NewCounter(prometheus.CounterOpts{
			Name: "companion_sync_flush_passes_total",
			Help: "Number of flush passes triggered by connectivity transitions",
		}),
		EntitiesFlushed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "companion_sync_entities_flushed_total",
			Help: "Entities confirmed persisted remotely, by collection",
		}, []string{"collection"}),
		FlushFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "companion_sync_flush_failures_total",
			Help: "Entities that failed to flush and remain buffered, by collection",
		}, []string{"collection"}),
	}
}
