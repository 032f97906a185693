package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: "start", NodeType: domain.NodeTypeMessage})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: "next", NodeType: domain.NodeTypeMessage})
	hooks.OnAPIReturn(ctx, &domain.APIEvent{Method: "GET", Duration: 20 * time.Millisecond, IsError: true})
	m.ObserveTurn("bot-1", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APICalls.WithLabelValues("GET", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.APICalls.WithLabelValues("GET", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("bot-1", "ok")))

	count, err := testutil.GatherAndCount(reg, "chatflow_api_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(nil)
		metrics.New(nil)
	})
}
