package ratelimit

import (
	"context"
	"time"
)

// Decision describes the outcome of a rate limit check. Remaining is
// informational only.
type Decision struct {
	Allowed   bool
	Remaining int
}

// Limits configures one sliding-window check.
type Limits struct {
	Window      time.Duration
	MaxRequests int
}

// WindowStore runs one check-and-record operation against a sliding
// window of recent requests for a principal. Implementations share one
// boundary rule: the request is denied when the count of prior requests
// already in the window meets or exceeds MaxRequests, and a denied
// request records nothing.
type WindowStore interface {
	CheckAndRecord(ctx context.Context, principalID string, limits Limits, now time.Time) (Decision, error)
}
