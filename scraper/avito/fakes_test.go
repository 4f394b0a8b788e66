package avito

import (
	"avito-position-probe/config"
	"avito-position-probe/models"
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeFetcher serves canned pages keyed by "query|region" and records calls.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	fallback string
	calls    []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func key(query string, region models.RegionCode) string {
	return fmt.Sprintf("%s|%s", query, region)
}

func (f *fakeFetcher) Fetch(_ context.Context, query string, region models.RegionCode) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := key(query, region)
	f.calls = append(f.calls, k)
	if err, ok := f.errs[k]; ok {
		return "", err
	}
	if page, ok := f.pages[k]; ok {
		return page, nil
	}
	return f.fallback, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.RequestDelay = 20 * time.Second
	cfg.MaxQueries = 10
	return cfg
}

func page(ids ...string) string {
	html := "<html><body>"
	for _, id := range ids {
		html += fmt.Sprintf(`<div data-marker="item" data-item-id="%s"></div>`, id)
	}
	return html + "</body></html>"
}

var fixedNow = time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)

// newTestSweeper returns a sweeper that never sleeps and records the delays
// it was asked to wait.
func newTestSweeper(opts ...SweeperOption) (*Sweeper, *[]time.Duration) {
	waits := &[]time.Duration{}
	s := NewSweeper(testConfig(), opts...)
	s.now = func() time.Time { return fixedNow }
	s.wait = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return s, waits
}
