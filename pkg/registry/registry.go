// Package registry maps action types to the handlers that perform them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ErrNoHandler is returned by Dispatch for action types without a registered handler.
var ErrNoHandler = errors.New("no handler registered for action")

// Handler performs one action. payload is the typed value returned by domain.DecodeAction
// (e.g. domain.WebhookPayload).
type Handler func(ctx context.Context, payload any) error

// Registry implements ports.ActionDispatcher by routing each action to its handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.ActionType]Handler
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.ActionType]Handler),
	}
}

// Register adds a handler for an action type.
// If a handler for the type exists, it is overwritten.
func (r *Registry) Register(actionType domain.ActionType, fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionType] = fn
}

// Has reports whether a handler is registered for the type.
func (r *Registry) Has(actionType domain.ActionType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[actionType]
	return ok
}

// Dispatch decodes the action payload and runs its handler.
func (r *Registry) Dispatch(ctx context.Context, action domain.Action) error {
	r.mu.RLock()
	fn, ok := r.handlers[action.Type]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, action.Type)
	}

	payload, err := domain.DecodeAction(action)
	if err != nil {
		return err
	}
	return fn(ctx, payload)
}
