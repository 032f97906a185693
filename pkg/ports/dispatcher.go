package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ActionDispatcher defines how side-effects are executed.
// The engine reports actions, and the host implements this interface to perform them.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, action domain.Action) error
}
