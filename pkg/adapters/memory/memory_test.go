package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, memory.NewConversationStore())
}

func TestFlowStore_Contract(t *testing.T) {
	tests.FlowStoreContractTest(t, memory.NewFlowStore(), "bot-contract")
}

func TestFlowStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFlowStore()

	created, err := store.Create(ctx, domain.DefaultFlow("bot-1"))
	require.NoError(t, err)
	created.Nodes[0].Data.Content = "mutated"

	latest, err := store.Latest(ctx, "bot-1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", latest.Nodes[0].Data.Content)
}

func TestFlowStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFlowStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, domain.DefaultFlow("bot-1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	versions, err := store.Versions(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, versions, 20)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
}
