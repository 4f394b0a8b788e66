package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrPermanent marks an error that Retry must not retry.
var ErrPermanent = errors.New("permanent failure")

// Retry runs fn up to maxRetries times, waiting 1s, 2s, 4s... between attempts.
// It stops early when fn succeeds, when fn returns an error wrapping
// ErrPermanent, or when ctx is done.
func Retry(ctx context.Context, maxRetries int, fn func() error) error {
	return retry(ctx, maxRetries, time.Second, fn)
}

func retry(ctx context.Context, maxRetries int, base time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) {
			return lastErr
		}

		if attempt < maxRetries {
			wait := base << uint(attempt-1)
			slog.Warn("attempt failed, retrying",
				"attempt", attempt,
				"max", maxRetries,
				"wait", wait,
				"error", lastErr,
			)
			if err := Sleep(ctx, wait); err != nil {
				return fmt.Errorf("retry interrupted after %d attempts: %w", attempt, err)
			}
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr)
}
