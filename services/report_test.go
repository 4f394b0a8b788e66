package services

import (
	"avito-position-probe/models"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkedAt = time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)

func cell(query string, region models.RegionCode, outcome models.RankOutcome) models.SweepCell {
	return models.SweepCell{Query: query, Region: region, Outcome: outcome, CheckedAt: checkedAt}
}

func TestBuildReport_GroupsByQuery(t *testing.T) {
	var cells []models.SweepCell
	for _, q := range []string{"bike", "road bike", "bicycle"} {
		for _, r := range []models.RegionCode{models.RegionSaintPetersburg, models.RegionSaintPetersburgOblast} {
			cells = append(cells, cell(q, r, models.NotFound()))
		}
	}

	report := BuildReport(cells, "48273")

	assert.True(t, strings.HasPrefix(report, "Position report\n"))
	assert.True(t, strings.HasSuffix(report, "\nListing ID: 48273\n"))
	assert.Equal(t, 6, strings.Count(report, "  - "))
	assert.Equal(t, 6, strings.Count(report, "not found (09:05:07)"))

	bike := strings.Index(report, "\nbike\n")
	road := strings.Index(report, "\nroad bike\n")
	bicycle := strings.Index(report, "\nbicycle\n")
	require.True(t, bike >= 0 && road >= 0 && bicycle >= 0)
	assert.Less(t, bike, road)
	assert.Less(t, road, bicycle)
}

func TestBuildReport_Outcomes(t *testing.T) {
	cells := []models.SweepCell{
		cell("bike", models.RegionSaintPetersburg, models.Found(3)),
		cell("bike", models.RegionSaintPetersburgOblast, models.FetchFailed("challenge")),
		cell("bike", "moskva", models.ParseFailed("unparseable page")),
	}

	want := "Position report\n" +
		"\nbike\n" +
		"  - " + models.RegionName(models.RegionSaintPetersburg) + ": position 3 (09:05:07)\n" +
		"  - " + models.RegionName(models.RegionSaintPetersburgOblast) + ": fetch failed: challenge (09:05:07)\n" +
		"  - moskva: parse failed: unparseable page (09:05:07)\n" +
		"\nListing ID: 48273\n"

	assert.Equal(t, want, BuildReport(cells, "48273"))
}

func TestBuildReport_InterleavedQueriesKeepFirstSeenOrder(t *testing.T) {
	cells := []models.SweepCell{
		cell("b", "R1", models.NotFound()),
		cell("a", "R1", models.NotFound()),
		cell("b", "R2", models.Found(1)),
	}

	report := BuildReport(cells, "48273")
	assert.Less(t, strings.Index(report, "\nb\n"), strings.Index(report, "\na\n"))
	assert.Equal(t, 1, strings.Count(report, "\nb\n"))
}

func TestBuildReport_NoCells(t *testing.T) {
	assert.Equal(t, "Position report\n\nListing ID: 48273\n", BuildReport(nil, "48273"))
}

func TestSummarize(t *testing.T) {
	cells := []models.SweepCell{
		cell("a", "R1", models.Found(7)),
		cell("a", "R2", models.NotFound()),
		cell("b", "R1", models.Found(2)),
		cell("b", "R2", models.FetchFailed("network")),
		cell("c", "R1", models.ParseFailed("boom")),
		cell("c", "R2", models.Found(2)),
	}

	s := Summarize(cells, "48273")
	assert.Equal(t, Summary{
		TargetID:     "48273",
		Cells:        6,
		Found:        3,
		NotFound:     1,
		FetchFailed:  1,
		ParseFailed:  1,
		BestPosition: 2,
		BestQuery:    "b",
		BestRegion:   "R1",
	}, s)
}

func TestPrintReport(t *testing.T) {
	cells := []models.SweepCell{
		cell("bike", models.RegionSaintPetersburg, models.Found(4)),
		cell("bike", models.RegionSaintPetersburgOblast, models.NotFound()),
	}

	var buf bytes.Buffer
	require.NoError(t, PrintReport(&buf, cells, "48273"))

	out := buf.String()
	assert.Contains(t, out, "position 4")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "48273")
	assert.Contains(t, out, "#4 (bike, "+models.RegionName(models.RegionSaintPetersburg)+")")
}
