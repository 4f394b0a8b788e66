package avito

import (
	"errors"
	"fmt"
)

// ErrParse wraps every failure of the extractor itself. A page that simply
// contains no listings is not a parse failure.
var ErrParse = errors.New("listing extraction failed")

// FetchReason classifies why a page could not be fetched.
type FetchReason string

const (
	ReasonNetwork   FetchReason = "network"
	ReasonStatus    FetchReason = "status"
	ReasonChallenge FetchReason = "challenge"
	ReasonCancelled FetchReason = "cancelled"
)

// FetchError is returned by PageFetcher implementations.
type FetchError struct {
	Reason FetchReason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// fetchReason extracts the reason from err, defaulting to a network failure
// for errors returned by fetchers that do not use FetchError.
func fetchReason(err error) FetchReason {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonNetwork
}
