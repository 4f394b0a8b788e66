package storage

import (
	"avito-position-probe/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	defer store.Close()

	fresh, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, &models.Session{ChatID: 42, State: models.StateIdle}, fresh)

	session := &models.Session{
		ChatID:   42,
		TargetID: "48273",
		Regions:  []models.RegionCode{models.RegionSaintPetersburg},
		State:    models.StateAwaitQueries,
	}
	require.NoError(t, store.Save(ctx, session))

	// Mutating the caller's copy must not leak into the store.
	session.Regions[0] = "moskva"

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "48273", loaded.TargetID)
	assert.Equal(t, []models.RegionCode{models.RegionSaintPetersburg}, loaded.Regions)
	assert.Equal(t, models.StateAwaitQueries, loaded.State)

	other, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, other.TargetID)

	require.NoError(t, store.Delete(ctx, 42))
	gone, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, gone.State)
	assert.Empty(t, gone.TargetID)
}
