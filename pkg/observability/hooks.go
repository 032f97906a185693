package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/chatflow/pkg/domain"
)

// LoggingHooks returns hooks that emit one structured log record per lifecycle event.
// Node events are logged at debug level; API returns at info, or warn when they failed.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"flow_id", e.FlowID,
				"node_id", e.NodeID,
				"type", e.NodeType,
			)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"flow_id", e.FlowID,
				"node_id", e.NodeID,
			)
		},
		OnAPICall: func(ctx context.Context, e *domain.APIEvent) {
			logger.DebugContext(ctx, "api_call",
				"node_id", e.NodeID,
				"method", e.Method,
				"url", e.URL,
			)
		},
		OnAPIReturn: func(ctx context.Context, e *domain.APIEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "api_return",
				"node_id", e.NodeID,
				"method", e.Method,
				"url", e.URL,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
	}
}
