package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// TurnEngine is the interface adapters (HTTP, MCP, CLI) use to drive the engine.
type TurnEngine interface {
	// Validate checks the structure of a candidate flow.
	Validate(nodes []domain.Node, connections []domain.Connection) domain.ValidationResult

	// Execute runs one turn against an in-memory flow. It never fails.
	Execute(ctx context.Context, flow *domain.Flow, input string, vars map[string]any) domain.TurnResult
}

// FlowService is the stateful surface: flow versions and persisted conversations.
type FlowService interface {
	TurnEngine

	Provision(ctx context.Context, botID string) (*domain.Flow, error)
	GetFlow(ctx context.Context, botID string) (*domain.Flow, error)
	Versions(ctx context.Context, botID string) ([]*domain.Flow, error)
	UpdateFlow(ctx context.Context, botID string, update domain.FlowUpdate) (*domain.Flow, domain.ValidationResult, error)
	Activate(ctx context.Context, botID string) (*domain.Flow, error)
	Deactivate(ctx context.Context, botID string) (*domain.Flow, error)
	Converse(ctx context.Context, botID, conversationID, input string) (domain.TurnResult, error)
	Conversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
}
