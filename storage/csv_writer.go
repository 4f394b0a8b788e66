package storage

import (
	"avito-position-probe/models"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVWriter exports the cells of one sweep. Each Write replaces the file.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write saves the cells of a sweep for targetID, creating the output
// directory when needed.
//
// CSV columns: target_id, query, region, region_name, outcome, position, reason, checked_at
func (w *CSVWriter) Write(targetID string, cells []models.SweepCell) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"target_id", "query", "region", "region_name", "outcome", "position", "reason", "checked_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	for _, c := range cells {
		position := ""
		if c.Outcome.Kind == models.OutcomeFound {
			position = strconv.Itoa(c.Outcome.Position)
		}
		row := []string{
			targetID,
			c.Query,
			string(c.Region),
			models.RegionName(c.Region),
			c.Outcome.Kind.String(),
			position,
			c.Outcome.Reason,
			c.CheckedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	return nil
}
