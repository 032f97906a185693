package tests

import (
	"context"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FlowStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.FlowStore.
// botID must not have any stored versions when the suite starts.
func FlowStoreContractTest(t *testing.T, store ports.FlowStore, botID string) {
	t.Helper()
	ctx := context.Background()

	// 1. Empty bot
	t.Run("Latest_NotFound", func(t *testing.T) {
		_, err := store.Latest(ctx, botID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)

		_, err = store.Active(ctx, botID)
		assert.Error(t, err)
	})

	// 2. Append-only versioning
	t.Run("Create_AssignsVersions", func(t *testing.T) {
		v1, err := store.Create(ctx, domain.DefaultFlow(botID))
		require.NoError(t, err)
		assert.Equal(t, 1, v1.Version)
		assert.NotEmpty(t, v1.ID)
		assert.False(t, v1.IsActive)
		assert.False(t, v1.CreatedAt.IsZero())

		edited := domain.DefaultFlow(botID)
		edited.Nodes[0].Data.Content = "Edited greeting"
		v2, err := store.Create(ctx, edited)
		require.NoError(t, err)
		assert.Equal(t, 2, v2.Version)
		assert.NotEqual(t, v1.ID, v2.ID)

		latest, err := store.Latest(ctx, botID)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)
		assert.Equal(t, "Edited greeting", latest.Nodes[0].Data.Content)

		versions, err := store.Versions(ctx, botID)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, 1, versions[0].Version)
		assert.Equal(t, 2, versions[1].Version)
	})

	// 3. Activation
	t.Run("SetActive_TogglesLatest", func(t *testing.T) {
		_, err := store.Active(ctx, botID)
		assert.ErrorIs(t, err, domain.ErrNoActiveFlow)

		activated, err := store.SetActive(ctx, botID, true)
		require.NoError(t, err)
		assert.True(t, activated.IsActive)
		assert.Equal(t, 2, activated.Version, "activation must not create a version")

		active, err := store.Active(ctx, botID)
		require.NoError(t, err)
		assert.Equal(t, 2, active.Version)

		versions, err := store.Versions(ctx, botID)
		require.NoError(t, err)
		assert.Len(t, versions, 2)
	})

	t.Run("SetActive_AtMostOneActive", func(t *testing.T) {
		_, err := store.Create(ctx, domain.DefaultFlow(botID))
		require.NoError(t, err)

		// v3 is inactive; v2 stays the active one until v3 is activated
		active, err := store.Active(ctx, botID)
		require.NoError(t, err)
		assert.Equal(t, 2, active.Version)

		_, err = store.SetActive(ctx, botID, true)
		require.NoError(t, err)

		versions, err := store.Versions(ctx, botID)
		require.NoError(t, err)
		activeCount := 0
		for _, v := range versions {
			if v.IsActive {
				activeCount++
				assert.Equal(t, 3, v.Version)
			}
		}
		assert.Equal(t, 1, activeCount)
	})

	t.Run("SetActive_Deactivate", func(t *testing.T) {
		deactivated, err := store.SetActive(ctx, botID, false)
		require.NoError(t, err)
		assert.False(t, deactivated.IsActive)

		_, err = store.Active(ctx, botID)
		assert.ErrorIs(t, err, domain.ErrNoActiveFlow)
	})

	t.Run("SetActive_DeactivateWithNewerDraft", func(t *testing.T) {
		_, err := store.SetActive(ctx, botID, true)
		require.NoError(t, err)
		live, err := store.Active(ctx, botID)
		require.NoError(t, err)

		draft, err := store.Create(ctx, domain.DefaultFlow(botID))
		require.NoError(t, err)
		assert.Greater(t, draft.Version, live.Version)

		deactivated, err := store.SetActive(ctx, botID, false)
		require.NoError(t, err)
		assert.Equal(t, draft.Version, deactivated.Version)
		assert.False(t, deactivated.IsActive)

		_, err = store.Active(ctx, botID)
		assert.ErrorIs(t, err, domain.ErrNoActiveFlow, "older versions must not stay live")

		versions, err := store.Versions(ctx, botID)
		require.NoError(t, err)
		for _, v := range versions {
			assert.False(t, v.IsActive, "version %d still active", v.Version)
		}
	})

	t.Run("SetActive_UnknownBot", func(t *testing.T) {
		_, err := store.SetActive(ctx, botID+"-ghost", true)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})
}
