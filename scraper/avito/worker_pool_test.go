package avito

import (
	"avito-position-probe/config"
	"avito-position-probe/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepPool_ResultsKeepRequestOrder(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fallback = page("11111", "22222", "33333")

	s := NewSweeper(testConfig())
	s.wait = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	requests := []models.SweepRequest{
		{TargetID: "33333", Queries: []string{"a"}, Regions: twoRegions},
		{TargetID: "11111", Queries: []string{"b"}, Regions: twoRegions},
		{TargetID: "99999", Queries: []string{"c"}, Regions: twoRegions},
		{TargetID: "1", Queries: []string{"d"}, Regions: twoRegions},
	}

	pool := NewSweepPool(s, fetcher, &config.Config{MaxWorkers: 3})
	results := pool.Run(context.Background(), requests)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, requests[i].TargetID, res.Request.TargetID)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, models.Found(3), results[0].Cells[0].Outcome)
	assert.Equal(t, models.Found(1), results[1].Cells[1].Outcome)
	assert.Equal(t, models.NotFound(), results[2].Cells[0].Outcome)

	assert.ErrorIs(t, results[3].Err, models.ErrConfiguration)
	assert.Nil(t, results[3].Cells)

	assert.Len(t, fetcher.Calls(), 6)
}

func TestSweepPool_Empty(t *testing.T) {
	pool := NewSweepPool(NewSweeper(testConfig()), newFakeFetcher(), testConfig())
	assert.Nil(t, pool.Run(context.Background(), nil))
}
