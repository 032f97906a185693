// Package metrics exposes interpreter activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the chatflow collectors.
type Metrics struct {
	NodeVisits  *prometheus.CounterVec
	APICalls    *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec
	Turns       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"node_type"},
		),
		APICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_api_calls_total",
				Help: "Total number of api_call node requests",
			},
			[]string{"method", "outcome"},
		),
		APIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatflow_api_call_duration_seconds",
				Help:    "Duration of api_call node requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_turns_total",
				Help: "Total number of conversation turns",
			},
			[]string{"bot_id", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.NodeVisits, m.APICalls, m.APIDuration, m.Turns)
	}
	return m
}

// Hooks returns lifecycle hooks that record node visits and API calls.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.NodeType)).Inc()
		},
		OnAPIReturn: func(ctx context.Context, e *domain.APIEvent) {
			outcome := "success"
			if e.IsError {
				outcome = "error"
			}
			m.APICalls.WithLabelValues(e.Method, outcome).Inc()
			m.APIDuration.WithLabelValues(e.Method).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveTurn counts one turn for a bot. outcome is "ok", "no_active_flow", "rate_limited" or "error".
func (m *Metrics) ObserveTurn(botID, outcome string) {
	m.Turns.WithLabelValues(botID, outcome).Inc()
}
