package avito

import (
	"avito-position-probe/models"
	"avito-position-probe/utils"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders result pages in headless Chrome. It is slower than
// HTTPFetcher but gets past pages that require JavaScript.
type BrowserFetcher struct {
	baseURL     string
	timeout     time.Duration
	settle      time.Duration
	profile     utils.Profile
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *slog.Logger
}

func NewBrowserFetcher(baseURL string, timeout time.Duration, headless bool, logger *slog.Logger) *BrowserFetcher {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	profile := utils.RandomProfile()
	logger.Info("launching Chrome", "headless", headless, "platform", profile.Platform)

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		profile.ChromeOpts(headless)...,
	)
	return &BrowserFetcher{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		settle:      3 * time.Second,
		profile:     profile,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

func (b *BrowserFetcher) Close() {
	b.logger.Info("closing Chrome")
	b.allocCancel()
}

func (b *BrowserFetcher) Fetch(ctx context.Context, query string, region models.RegionCode) (string, error) {
	endpoint := SearchURL(b.baseURL, region, query)

	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, b.profile.Mask()); err != nil {
		if ctx.Err() != nil {
			return "", &FetchError{Reason: ReasonCancelled, Err: ctx.Err()}
		}
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("prepare tab: %w", err)}
	}

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(endpoint))
	if err != nil {
		if ctx.Err() != nil {
			return "", &FetchError{Reason: ReasonCancelled, Err: ctx.Err()}
		}
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("navigate: %w", err)}
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		return "", &FetchError{
			Reason: ReasonStatus,
			Err:    fmt.Errorf("unexpected status code %d", resp.Status),
		}
	}

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", &FetchError{Reason: ReasonCancelled, Err: ctx.Err()}
		}
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("read page: %w", err)}
	}

	if IsChallenge(html) {
		return "", &FetchError{Reason: ReasonChallenge, Err: errors.New("captcha page rendered")}
	}
	return html, nil
}
