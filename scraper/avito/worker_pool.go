package avito

import (
	"avito-position-probe/config"
	"avito-position-probe/models"
	"context"
	"log/slog"
	"sync"
)

// SweepResult is the outcome of one request handed to a SweepPool.
type SweepResult struct {
	Request models.SweepRequest
	Cells   []models.SweepCell
	Err     error
}

// SweepPool runs independent sweeps side by side, one per worker. Each sweep
// keeps its own request and cells; only the fetcher is shared.
type SweepPool struct {
	sweeper *Sweeper
	fetcher PageFetcher
	workers int
	logger  *slog.Logger

	jobs    chan int
	results chan indexedResult
	wg      sync.WaitGroup
}

type indexedResult struct {
	index  int
	result SweepResult
}

func NewSweepPool(sweeper *Sweeper, fetcher PageFetcher, cfg *config.Config) *SweepPool {
	return &SweepPool{
		sweeper: sweeper,
		fetcher: fetcher,
		workers: cfg.MaxWorkers,
		logger:  sweeper.logger,
	}
}

// Run sweeps every request and returns the results in the order of requests.
// A pool runs one batch at a time; Run must not be called concurrently.
func (p *SweepPool) Run(ctx context.Context, requests []models.SweepRequest) []SweepResult {
	if len(requests) == 0 {
		return nil
	}

	p.jobs = make(chan int, len(requests))
	p.results = make(chan indexedResult, len(requests))

	workerCount := p.workers
	if workerCount < 1 {
		workerCount = 1
	}
	if len(requests) < workerCount {
		workerCount = len(requests)
	}

	p.logger.Info("starting sweep pool", "sweeps", len(requests), "workers", workerCount)

	p.wg.Add(workerCount)
	for i := 1; i <= workerCount; i++ {
		go p.worker(ctx, i, requests)
	}

	for i := range requests {
		p.jobs <- i
	}
	close(p.jobs)

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p.collect(len(requests))
}

func (p *SweepPool) worker(ctx context.Context, id int, requests []models.SweepRequest) {
	defer p.wg.Done()

	for index := range p.jobs {
		req := requests[index]
		p.logger.Debug("worker picked sweep", "worker", id, "target_id", req.TargetID)

		cells, err := p.sweeper.Run(ctx, req, p.fetcher)
		p.results <- indexedResult{
			index:  index,
			result: SweepResult{Request: req, Cells: cells, Err: err},
		}
	}
}

func (p *SweepPool) collect(n int) []SweepResult {
	all := make([]SweepResult, n)
	failed := 0

	for r := range p.results {
		if r.result.Err != nil {
			p.logger.Error("sweep failed", "target_id", r.result.Request.TargetID, "error", r.result.Err)
			failed++
		}
		all[r.index] = r.result
	}

	p.logger.Info("sweep pool finished", "sweeps", n, "failed", failed)
	return all
}
