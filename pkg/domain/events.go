package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventAPICall   EventType = "api_call"
	EventAPIReturn EventType = "api_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FlowID    string    `json:"flow_id,omitempty"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
	Response string   `json:"response,omitempty"` // Only set on leave
}

// APIEvent represents an outbound call made by an api_call node.
type APIEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Method   string        `json:"method"`
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnAPICall   func(context.Context, *APIEvent)
	OnAPIReturn func(context.Context, *APIEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave: chain(h.OnNodeLeave, other.OnNodeLeave),
		OnAPICall:   chain(h.OnAPICall, other.OnAPICall),
		OnAPIReturn: chain(h.OnAPIReturn, other.OnAPIReturn),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
