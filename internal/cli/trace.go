package cli

import (
	"context"
	"sync"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/domain"
)

// TraceTurn runs one turn against flow and reports the visited nodes as a graph overlay.
func TraceTurn(ctx context.Context, flow *domain.Flow, input string, vars map[string]any, opts ...chatflow.Option) (*graph.GraphOverlay, domain.TurnResult, error) {
	var mu sync.Mutex
	overlay := &graph.GraphOverlay{}
	recorder := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			overlay.VisitedNodes = append(overlay.VisitedNodes, e.NodeID)
			overlay.CurrentNode = e.NodeID
		},
	}

	eng, err := chatflow.New(append(opts, chatflow.WithLifecycleHooks(recorder))...)
	if err != nil {
		return nil, domain.TurnResult{}, err
	}
	result := eng.Execute(ctx, flow, input, vars)
	return overlay, result, nil
}
