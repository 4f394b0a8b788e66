package services

import (
	"avito-position-probe/models"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const checkTimeLayout = "15:04:05"

// BuildReport renders the cells of a sweep grouped by query, in the order the
// queries were first seen, with one line per region, followed by the target id.
func BuildReport(cells []models.SweepCell, targetID string) string {
	var b strings.Builder
	b.WriteString("Position report\n")

	for _, group := range groupByQuery(cells) {
		fmt.Fprintf(&b, "\n%s\n", group.query)
		for _, cell := range group.cells {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n",
				models.RegionName(cell.Region),
				cell.Outcome.String(),
				cell.CheckedAt.Format(checkTimeLayout),
			)
		}
	}

	fmt.Fprintf(&b, "\nListing ID: %s\n", targetID)
	return b.String()
}

// Summary counts the outcomes of one sweep.
type Summary struct {
	TargetID     string
	Cells        int
	Found        int
	NotFound     int
	FetchFailed  int
	ParseFailed  int
	BestPosition int
	BestQuery    string
	BestRegion   models.RegionCode
}

func Summarize(cells []models.SweepCell, targetID string) Summary {
	s := Summary{TargetID: targetID, Cells: len(cells)}

	for _, cell := range cells {
		switch cell.Outcome.Kind {
		case models.OutcomeFound:
			s.Found++
			if s.BestPosition == 0 || cell.Outcome.Position < s.BestPosition {
				s.BestPosition = cell.Outcome.Position
				s.BestQuery = cell.Query
				s.BestRegion = cell.Region
			}
		case models.OutcomeNotFound:
			s.NotFound++
		case models.OutcomeFetchFailed:
			s.FetchFailed++
		case models.OutcomeParseFailed:
			s.ParseFailed++
		}
	}

	return s
}

// PrintReport writes the cells as a table followed by the summary counts.
func PrintReport(w io.Writer, cells []models.SweepCell, targetID string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Query", "Region", "Result", "Checked")
	for _, cell := range cells {
		err := table.Append(
			cell.Query,
			models.RegionName(cell.Region),
			cell.Outcome.String(),
			cell.CheckedAt.Format(checkTimeLayout),
		)
		if err != nil {
			return fmt.Errorf("report table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("report table: %w", err)
	}

	s := Summarize(cells, targetID)
	summary := tablewriter.NewWriter(w)
	summary.Header("Listing", "Checks", "Found", "Not found", "Failed", "Best")
	best := "-"
	if s.BestPosition > 0 {
		best = fmt.Sprintf("#%d (%s, %s)", s.BestPosition, s.BestQuery, models.RegionName(s.BestRegion))
	}
	err := summary.Append(
		s.TargetID,
		fmt.Sprintf("%d", s.Cells),
		fmt.Sprintf("%d", s.Found),
		fmt.Sprintf("%d", s.NotFound),
		fmt.Sprintf("%d", s.FetchFailed+s.ParseFailed),
		best,
	)
	if err != nil {
		return fmt.Errorf("summary table: %w", err)
	}
	if err := summary.Render(); err != nil {
		return fmt.Errorf("summary table: %w", err)
	}
	return nil
}

type queryGroup struct {
	query string
	cells []models.SweepCell
}

func groupByQuery(cells []models.SweepCell) []queryGroup {
	var groups []queryGroup
	index := make(map[string]int)

	for _, cell := range cells {
		i, ok := index[cell.Query]
		if !ok {
			i = len(groups)
			index[cell.Query] = i
			groups = append(groups, queryGroup{query: cell.Query})
		}
		groups[i].cells = append(groups[i].cells, cell)
	}

	return groups
}
