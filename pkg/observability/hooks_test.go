package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LoggingHooks(logging.NewWithWriter(&buf, logging.FormatJSON, slog.LevelInfo))
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: "start"})
	assert.Empty(t, buf.String(), "node events are debug level")

	hooks.OnAPIReturn(ctx, &domain.APIEvent{NodeID: "weather", Method: "GET", IsError: true})
	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"msg":"api_return"`)
	assert.Contains(t, out, `"node_id":"weather"`)
}
