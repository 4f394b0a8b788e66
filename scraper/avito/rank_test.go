package avito

import (
	"avito-position-probe/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func records(ids ...string) []models.ListingRecord {
	out := make([]models.ListingRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ListingRecord{ID: id})
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		records []models.ListingRecord
		target  string
		want    models.RankOutcome
	}{
		{name: "first", records: records("1", "2", "3"), target: "1", want: models.Found(1)},
		{name: "last", records: records("1", "2", "3"), target: "3", want: models.Found(3)},
		{name: "duplicate takes first", records: records("7", "5", "7"), target: "7", want: models.Found(1)},
		{name: "absent", records: records("1", "2"), target: "9", want: models.NotFound()},
		{name: "empty", records: nil, target: "9", want: models.NotFound()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.records, tt.target))
		})
	}
}

func TestResolve_EveryPosition(t *testing.T) {
	recs := records("10", "20", "30", "40", "50")
	for k, r := range recs {
		assert.Equal(t, models.Found(k+1), Resolve(recs, r.ID))
	}
}
