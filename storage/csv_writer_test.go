package storage

import (
	"avito-position-probe/models"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	at := time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)

	cells := []models.SweepCell{
		{Query: "road bike, carbon", Region: models.RegionSaintPetersburg, Outcome: models.Found(3), CheckedAt: at},
		{Query: "road bike, carbon", Region: models.RegionSaintPetersburgOblast, Outcome: models.FetchFailed("challenge"), CheckedAt: at},
	}

	require.NoError(t, NewCSVWriter(path).Write("48273", cells))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"target_id", "query", "region", "region_name", "outcome", "position", "reason", "checked_at"}, rows[0])
	assert.Equal(t, []string{
		"48273", "road bike, carbon", "sankt-peterburg", models.RegionName(models.RegionSaintPetersburg),
		"found", "3", "", "2026-10-15T09:05:07Z",
	}, rows[1])
	assert.Equal(t, "fetch_failed", rows[2][4])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "challenge", rows[2][6])
}

func TestCSVWriter_ReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w := NewCSVWriter(path)

	require.NoError(t, w.Write("11111", []models.SweepCell{{Query: "a", Region: "R1"}, {Query: "b", Region: "R1"}}))
	require.NoError(t, w.Write("22222", []models.SweepCell{{Query: "c", Region: "R1"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "11111")
	assert.Contains(t, string(data), "22222")
}
