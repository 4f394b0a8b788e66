package storage

import (
	"avito-position-probe/models"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set TEST_DATABASE_URL to run against a real PostgreSQL instance.
func newTestPostgresStore(t *testing.T) *PostgresSessionStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresSessionStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestPostgresSessionStore_RoundTrip(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()
	const chatID = int64(-900001)

	t.Cleanup(func() { _ = store.Delete(context.Background(), chatID) })

	fresh, err := store.Load(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, fresh.State)

	session := &models.Session{
		ChatID:   chatID,
		TargetID: "48273",
		Regions:  []models.RegionCode{models.RegionSaintPetersburg, models.RegionSaintPetersburgOblast},
		State:    models.StateAwaitQueries,
	}
	require.NoError(t, store.Save(ctx, session))

	session.State = models.StateIdle
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Load(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "48273", loaded.TargetID)
	assert.Equal(t, session.Regions, loaded.Regions)
	assert.Equal(t, models.StateIdle, loaded.State)
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, chatID))
	gone, err := store.Load(ctx, chatID)
	require.NoError(t, err)
	assert.Empty(t, gone.TargetID)
}
