package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	convID := "contract-test-conv-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(convID, "bot-1")
		conv.Variables["name"] = "Sam"
		conv.Variables["count"] = 42
		conv.History = append(conv.History, domain.Turn{Input: "hi", Response: "hello", FlowVersion: 1})

		err := store.Save(ctx, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "bot-1", loaded.BotID)
		assert.Equal(t, "Sam", loaded.Variables["name"])
		// JSON persistence may turn ints into float64; only check existence.
		assert.NotNil(t, loaded.Variables["count"])
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "hello", loaded.History[0].Response)
	})

	t.Run("Loaded Copy Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err)
		loaded.Variables["name"] = "mutated"

		again, err := store.Load(ctx, convID)
		require.NoError(t, err)
		assert.Equal(t, "Sam", again.Variables["name"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewConversation(convID, "bot-1"))
		require.NoError(t, err)

		err = store.Delete(ctx, convID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := convID + "-1"
		id2 := convID + "-2"
		_ = store.Save(ctx, domain.NewConversation(id1, "bot-1"))
		_ = store.Save(ctx, domain.NewConversation(id2, "bot-1"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
