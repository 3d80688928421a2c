// Package metrics exposes the engine's operational counters via
// prometheus/client_golang, matching the instrumentation approach of
// DimaJoyti-ai-agentic-crypto-browser and phenomenon0-polymarket-agents
// (same retrieval pack). Purely additive: the engine never branches on
// a metric's value.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups the engine's metrics under one prometheus.Registerer
// so a caller can mount them under its own /metrics handler, or default
// to the global registry.
type Registry struct {
	MessagesApplied *prometheus.CounterVec
	SequenceGaps    *prometheus.CounterVec
	Reconnects      prometheus.Counter
}

// New creates and registers a fresh set of engine metrics against reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		MessagesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdaxbook_messages_applied_total",
			Help: "Number of feed messages successfully applied to a product book.",
		}, []string{"product_id"}),
		SequenceGaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdaxbook_sequence_gaps_total",
			Help: "Number of sequence gaps detected, triggering a resync.",
		}, []string{"product_id"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdaxbook_feed_reconnects_total",
			Help: "Number of times the feed transport was torn down and reopened.",
		}),
	}
	reg.MustRegister(r.MessagesApplied, r.SequenceGaps, r.Reconnects)
	return r
}
