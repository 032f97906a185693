package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, conv *domain.Conversation) error { return nil }
func (nopStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	return nil, domain.ErrConversationNotFound
}
func (nopStore) Delete(ctx context.Context, id string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)  { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("conv-%d", i)
		_ = mgr.Save(ctx, domain.NewConversation(id, "bot"))
		_ = mgr.Delete(ctx, id)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
