package avito

import (
	"avito-position-probe/config"
	"avito-position-probe/models"
	"avito-position-probe/utils"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProgressFunc is called right before each fetch of a sweep.
type ProgressFunc func(job models.SweepJob)

// Sweeper checks one target listing across every (query, region) pair of a
// request, one pair at a time, pausing between network calls. A Sweeper holds
// no per-sweep state and may run several sweeps concurrently.
type Sweeper struct {
	extractor  *Extractor
	delay      time.Duration
	maxQueries int
	logger     *slog.Logger
	onProgress ProgressFunc

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

type SweeperOption func(*Sweeper)

func WithLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithProgress(fn ProgressFunc) SweeperOption {
	return func(s *Sweeper) {
		s.onProgress = fn
	}
}

func WithExtractor(e *Extractor) SweeperOption {
	return func(s *Sweeper) {
		if e != nil {
			s.extractor = e
		}
	}
}

func NewSweeper(cfg *config.Config, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		extractor:  NewExtractor(),
		delay:      cfg.RequestDelay,
		maxQueries: cfg.MaxQueries,
		logger:     utils.DiscardLogger(),
		now:        time.Now,
		wait:       utils.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the sweep and returns exactly one cell per (query, region)
// pair, queries outermost, in the order given by req.
//
// Per-pair failures become FetchFailed or ParseFailed cells and never stop the
// sweep. Run returns an error before fetching anything when req is invalid.
// When ctx is cancelled the pairs not yet checked are recorded as
// FetchFailed("cancelled") and the cells are returned together with ctx.Err().
func (s *Sweeper) Run(ctx context.Context, req models.SweepRequest, fetcher PageFetcher) ([]models.SweepCell, error) {
	if err := req.Validate(s.maxQueries); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, &models.ConfigError{Field: "fetcher", Reason: "is required"}
	}

	targetID := strings.TrimSpace(req.TargetID)
	log := s.logger.With("sweep_id", uuid.NewString(), "target_id", targetID)

	jobs := planJobs(req)
	cells := make([]models.SweepCell, 0, len(jobs))

	log.Info("sweep started",
		"queries", len(req.Queries),
		"regions", len(req.Regions),
		"delay", s.delay,
	)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			cells = append(cells, s.cancelled(jobs[i:])...)
			log.Warn("sweep cancelled", "checked", i, "total", len(jobs))
			return cells, err
		}

		cells = append(cells, s.runCell(ctx, log, job, targetID, fetcher))

		if i == len(jobs)-1 {
			break
		}
		if err := s.wait(ctx, s.delay); err != nil {
			cells = append(cells, s.cancelled(jobs[i+1:])...)
			log.Warn("sweep cancelled", "checked", i+1, "total", len(jobs))
			return cells, err
		}
	}

	found, failed := 0, 0
	for _, cell := range cells {
		switch {
		case cell.Outcome.Kind == models.OutcomeFound:
			found++
		case cell.Outcome.Failed():
			failed++
		}
	}
	log.Info("sweep finished", "cells", len(cells), "found", found, "failed", failed)

	return cells, nil
}

func (s *Sweeper) runCell(ctx context.Context, log *slog.Logger, job models.SweepJob, targetID string, fetcher PageFetcher) models.SweepCell {
	if s.onProgress != nil {
		s.onProgress(job)
	}

	cell := models.SweepCell{Query: job.Query, Region: job.Region}
	log = log.With("query", job.Query, "region", job.Region, "cell", job.Index)

	html, err := fetcher.Fetch(ctx, job.Query, job.Region)
	if err != nil {
		reason := fetchReason(err)
		if ctx.Err() != nil {
			reason = ReasonCancelled
		}
		log.Error("fetch failed", "reason", reason, "error", err)
		cell.Outcome = models.FetchFailed(string(reason))
		cell.CheckedAt = s.now()
		return cell
	}

	records, err := s.extractor.Extract(html)
	if err != nil {
		log.Error("extraction failed", "error", err)
		cell.Outcome = models.ParseFailed(err.Error())
		cell.CheckedAt = s.now()
		return cell
	}

	cell.Outcome = Resolve(records, targetID)
	cell.CheckedAt = s.now()
	log.Info("cell checked", "listings", len(records), "outcome", cell.Outcome.String())
	return cell
}

func (s *Sweeper) cancelled(jobs []models.SweepJob) []models.SweepCell {
	cells := make([]models.SweepCell, 0, len(jobs))
	for _, job := range jobs {
		cells = append(cells, models.SweepCell{
			Query:     job.Query,
			Region:    job.Region,
			Outcome:   models.FetchFailed(string(ReasonCancelled)),
			CheckedAt: s.now(),
		})
	}
	return cells
}

// planJobs lists the pairs of req with queries outermost.
func planJobs(req models.SweepRequest) []models.SweepJob {
	total := req.Total()
	jobs := make([]models.SweepJob, 0, total)
	for _, query := range req.Queries {
		for _, region := range req.Regions {
			jobs = append(jobs, models.SweepJob{
				Index:  len(jobs) + 1,
				Total:  total,
				Query:  strings.TrimSpace(query),
				Region: region,
			})
		}
	}
	return jobs
}
