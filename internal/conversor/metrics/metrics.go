package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the converter's Prometheus collectors. A nil *Metrics is
// valid everywhere; all Record methods are no-ops on nil.
type Metrics struct {
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
	ProviderRequests  prometheus.CounterVec
	ProviderFailures  prometheus.CounterVec
	ResolutionsTotal  prometheus.CounterVec
	ConversionsTotal  prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rate_cache_hits_total",
			Help: "Resolutions served from the in-process quote cache",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rate_cache_misses_total",
			Help: "Resolutions that went through the provider chain",
		}),
		ProviderRequests: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_requests_total",
				Help: "Bulk rate fetches issued, by provider",
			},
			[]string{"provider"},
		),
		ProviderFailures: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_failures_total",
				Help: "Failed bulk rate fetches, by provider",
			},
			[]string{"provider"},
		),
		ResolutionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_resolutions_total",
				Help: "Completed rate resolutions, by outcome",
			},
			[]string{"outcome"},
		),
		ConversionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Completed currency conversions, by pair",
			},
			[]string{"origin", "destination"},
		),
	}
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordProviderRequest(provider string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordProviderFailure(provider string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordConversion(origin, destination string) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(origin, destination).Inc()
}
