package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ConversationStore defines the interface for persisting conversation context.
// This lets variables captured in one turn be read by the next one.
type ConversationStore interface {
	// Save persists the conversation under its ID.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves a conversation by ID.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// Delete removes a conversation.
	Delete(ctx context.Context, conversationID string) error

	// List returns the IDs of stored conversations.
	List(ctx context.Context) ([]string, error)
}
