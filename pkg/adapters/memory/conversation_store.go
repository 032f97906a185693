package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ConversationStore implements ports.ConversationStore in memory.
// Safe for concurrent use.
type ConversationStore struct {
	data map[string]*domain.Conversation
	mu   sync.RWMutex
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		data: make(map[string]*domain.Conversation),
	}
}

// Save persists a copy of the conversation.
func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	copied := conv.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conv.ID] = copied
	return nil
}

// Load retrieves a copy of the conversation so callers cannot mutate stored state.
func (s *ConversationStore) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// Delete removes the conversation.
func (s *ConversationStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationID)
	return nil
}

// List returns stored conversation IDs, sorted.
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
