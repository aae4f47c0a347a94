package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements a process-local sliding window over request
// timestamps. It is the fallback when the durable store is unreachable:
// per-process only, reset on restart, and its principal key set never
// shrinks.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string][]time.Time),
	}
}

// CheckAndRecord purges expired timestamps for the principal, then denies
// without recording when the remaining count already meets the cap.
func (s *MemoryStore) CheckAndRecord(_ context.Context, principalID string, limits Limits, now time.Time) (Decision, error) {
	if limits.MaxRequests <= 0 || principalID == "" {
		return Decision{Allowed: true}, nil
	}
	cutoff := now.Add(-limits.Window)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.windows[principalID][:0]
	for _, ts := range s.windows[principalID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limits.MaxRequests {
		s.windows[principalID] = kept
		return Decision{Allowed: false, Remaining: 0}, nil
	}
	kept = append(kept, now)
	s.windows[principalID] = kept
	return Decision{Allowed: true, Remaining: limits.MaxRequests - len(kept)}, nil
}
