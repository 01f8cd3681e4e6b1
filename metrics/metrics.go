// Package metrics counts filter chain activity for Prometheus.
package metrics

import (
	"context"

	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeApplied  = "applied"
	OutcomeSkipped  = "skipped"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
)

// UnknownFilter is the filter label of requests naming no registered filter.
// Request names are client input and never become label values.
const UnknownFilter = "_unknown"

// Collector turns chain events into counters.
type Collector struct {
	// FiltersTotal counts requests by registry, filter name and outcome.
	FiltersTotal *prometheus.CounterVec
	// ChainsTotal counts chain runs by registry and outcome.
	ChainsTotal *prometheus.CounterVec
	// ChainDuration is the latency of whole chain runs.
	ChainDuration *prometheus.HistogramVec
}

// NewCollector registers the sieve metrics with reg. A nil reg registers them
// with the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		FiltersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sieve_filters_total",
				Help: "Total number of filter requests",
			},
			[]string{"registry", "filter", "outcome"},
		),
		ChainsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sieve_chains_total",
				Help: "Total number of filter chain runs",
			},
			[]string{"registry", "outcome"},
		),
		ChainDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sieve_chain_duration_seconds",
				Help:    "Filter chain latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"registry"},
		),
	}
}

// Handle records a single event. It has the signature of a chain subscriber.
func (c *Collector) Handle(_ context.Context, event filter.Event) error {
	name := event.Filter
	if !event.Registered {
		name = UnknownFilter
	}
	switch event.Type {
	case filter.EventFilterApplied:
		c.FiltersTotal.WithLabelValues(event.Registry, name, OutcomeApplied).Inc()
	case filter.EventFilterSkipped:
		c.FiltersTotal.WithLabelValues(event.Registry, name, OutcomeSkipped).Inc()
	case filter.EventFilterRejected:
		c.FiltersTotal.WithLabelValues(event.Registry, name, OutcomeRejected).Inc()
	case filter.EventChainSucceeded:
		c.ChainsTotal.WithLabelValues(event.Registry, OutcomeSuccess).Inc()
		c.ChainDuration.WithLabelValues(event.Registry).Observe(event.Duration.Seconds())
	case filter.EventChainFailed:
		c.ChainsTotal.WithLabelValues(event.Registry, OutcomeFailure).Inc()
		c.ChainDuration.WithLabelValues(event.Registry).Observe(event.Duration.Seconds())
	}
	return nil
}

// Subscriber is implemented by filter chains.
type Subscriber interface {
	SubscribeAll(cb filter.EventCallback) func()
}

// Watch subscribes the collector to every event of chain and returns the
// unsubscribe function.
func (c *Collector) Watch(chain Subscriber) func() {
	return chain.SubscribeAll(c.Handle)
}
