package avito

import (
	"avito-position-probe/models"
	"avito-position-probe/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// challengeMarker appears in the body of the anti-bot verification page.
const challengeMarker = "captcha"

const defaultMaxBodyBytes = 8 << 20

// PageFetcher returns the search results HTML for one query in one region.
// Failures should be *FetchError values so the sweep can tell a challenge page
// from a transport problem.
type PageFetcher interface {
	Fetch(ctx context.Context, query string, region models.RegionCode) (string, error)
}

// IsChallenge reports whether body is an anti-bot challenge page rather than
// search results.
func IsChallenge(body string) bool {
	return strings.Contains(strings.ToLower(body), challengeMarker)
}

// SearchURL builds the results URL for query in region under baseURL.
func SearchURL(baseURL string, region models.RegionCode, query string) string {
	params := url.Values{}
	params.Set("cd", "1")
	params.Set("q", query)
	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(baseURL, "/"), url.PathEscape(string(region)), params.Encode())
}

// HTTPFetcher fetches result pages over plain HTTP with browser-like headers.
// One HTTPFetcher may be shared by concurrent sweeps; its limiter caps the
// combined request rate of all of them.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	profile utils.Profile
	maxBody int64
	logger  *slog.Logger
}

type HTTPFetcherOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Client            *http.Client
	Logger            *slog.Logger
}

func NewHTTPFetcher(opts HTTPFetcherOptions) (*HTTPFetcher, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, &models.ConfigError{Field: "base url", Reason: "is required"}
	}
	if _, err := url.Parse(base); err != nil {
		return nil, &models.ConfigError{Field: "base url", Reason: err.Error()}
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 25 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	return &HTTPFetcher{
		baseURL: strings.TrimRight(base, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		profile: utils.RandomProfile(),
		maxBody: defaultMaxBodyBytes,
		logger:  logger,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, query string, region models.RegionCode) (string, error) {
	return f.get(ctx, SearchURL(f.baseURL, region, query))
}

func (f *HTTPFetcher) get(ctx context.Context, endpoint string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", &FetchError{Reason: ReasonCancelled, Err: ctx.Err()}
		}
		// The next slot lies past the deadline of ctx.
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("rate limit: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &FetchError{Reason: ReasonNetwork, Err: err}
	}
	req.Header = f.profile.Headers()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &FetchError{Reason: ReasonCancelled, Err: err}
		}
		return "", &FetchError{Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	f.logger.Debug("page fetched",
		"url", endpoint,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			Reason: ReasonStatus,
			Err:    fmt.Errorf("unexpected status code %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > f.maxBody {
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("body exceeds %d bytes", f.maxBody)}
	}

	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("decode body: %w", err)}
	}
	decoded, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{Reason: ReasonNetwork, Err: fmt.Errorf("decode body: %w", err)}
	}

	html := string(decoded)
	if IsChallenge(html) {
		return "", &FetchError{Reason: ReasonChallenge, Err: errors.New("captcha page returned")}
	}
	return html, nil
}
