package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// FlowStore persists flow versions. Versions are append-only: an edit is a new record.
type FlowStore interface {
	// Create stores flow as the next version for its bot (latest + 1, or 1).
	// It assigns ID, Version and timestamps, stores it inactive, and returns the stored copy.
	Create(ctx context.Context, flow *domain.Flow) (*domain.Flow, error)

	// Latest returns the highest version for a bot.
	// Returns domain.ErrFlowNotFound if the bot has no flows.
	Latest(ctx context.Context, botID string) (*domain.Flow, error)

	// Active returns the highest active version for a bot.
	// Returns domain.ErrNoActiveFlow if none is active.
	Active(ctx context.Context, botID string) (*domain.Flow, error)

	// SetActive toggles IsActive on the latest version without creating a new one.
	// Activating a version deactivates every other version of the bot.
	SetActive(ctx context.Context, botID string, active bool) (*domain.Flow, error)

	// Versions lists every version of a bot, ascending.
	Versions(ctx context.Context, botID string) ([]*domain.Flow, error)
}
