package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OutcomeKind tags a RankOutcome.
type OutcomeKind int

const (
	OutcomeNotFound OutcomeKind = iota
	OutcomeFound
	OutcomeFetchFailed
	OutcomeParseFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeParseFailed:
		return "parse_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// RankOutcome is the result of one (query, region) cell. Position is 1-based
// and only set for OutcomeFound; Reason is only set for the failure kinds.
type RankOutcome struct {
	Kind     OutcomeKind
	Position int
	Reason   string
}

func Found(position int) RankOutcome {
	return RankOutcome{Kind: OutcomeFound, Position: position}
}

func NotFound() RankOutcome {
	return RankOutcome{Kind: OutcomeNotFound}
}

func FetchFailed(reason string) RankOutcome {
	return RankOutcome{Kind: OutcomeFetchFailed, Reason: reason}
}

func ParseFailed(reason string) RankOutcome {
	return RankOutcome{Kind: OutcomeParseFailed, Reason: reason}
}

// Failed reports whether the cell could not be checked at all.
func (o RankOutcome) Failed() bool {
	return o.Kind == OutcomeFetchFailed || o.Kind == OutcomeParseFailed
}

func (o RankOutcome) String() string {
	switch o.Kind {
	case OutcomeFound:
		return fmt.Sprintf("position %d", o.Position)
	case OutcomeNotFound:
		return "not found"
	case OutcomeFetchFailed:
		return "fetch failed: " + o.Reason
	case OutcomeParseFailed:
		return "parse failed: " + o.Reason
	default:
		return o.Kind.String()
	}
}

// SweepCell is the recorded outcome for one query in one region.
type SweepCell struct {
	Query     string
	Region    RegionCode
	Outcome   RankOutcome
	CheckedAt time.Time
}

// SweepRequest describes one full rank check. It is owned by the caller that
// built it and is not modified by the sweep.
type SweepRequest struct {
	TargetID string
	Queries  []string
	Regions  []RegionCode
}

// ErrConfiguration is matched by every ConfigError.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigError reports sweep-level input that prevents a sweep from starting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// MinTargetIDLength is the shortest listing id accepted from users.
const MinTargetIDLength = 5

// ValidateTargetID checks that id looks like an Avito listing id.
func ValidateTargetID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &ConfigError{Field: "target id", Reason: "is required"}
	}
	if !IsDigits(id) {
		return &ConfigError{Field: "target id", Reason: "must contain digits only"}
	}
	if len(id) < MinTargetIDLength {
		return &ConfigError{Field: "target id", Reason: fmt.Sprintf("must be at least %d digits", MinTargetIDLength)}
	}
	return nil
}

// Validate checks the request before any network call is made.
func (r SweepRequest) Validate(maxQueries int) error {
	if err := ValidateTargetID(r.TargetID); err != nil {
		return err
	}
	if len(r.Queries) == 0 {
		return &ConfigError{Field: "queries", Reason: "at least one query is required"}
	}
	if maxQueries > 0 && len(r.Queries) > maxQueries {
		return &ConfigError{Field: "queries", Reason: fmt.Sprintf("got %d, limit is %d", len(r.Queries), maxQueries)}
	}
	for i, q := range r.Queries {
		if strings.TrimSpace(q) == "" {
			return &ConfigError{Field: "queries", Reason: fmt.Sprintf("query %d is blank", i+1)}
		}
	}
	if len(r.Regions) == 0 {
		return &ConfigError{Field: "regions", Reason: "at least one region is required"}
	}
	return nil
}

// Total is the number of cells the sweep will produce.
func (r SweepRequest) Total() int {
	return len(r.Queries) * len(r.Regions)
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
