package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct {
	calls int
}

func (s *failingStore) CheckAndRecord(context.Context, string, Limits, time.Time) (Decision, error) {
	s.calls++
	return Decision{}, errors.New("connection refused")
}

type recordingStore struct {
	calls    int
	decision Decision
}

func (s *recordingStore) CheckAndRecord(context.Context, string, Limits, time.Time) (Decision, error) {
	s.calls++
	return s.decision, nil
}

func newTestManager(durable WindowStore, now time.Time) *Manager {
	return NewManager(durable, func() SettingsConfig {
		return SettingsConfig{MaxRequests: 5, WindowSeconds: 60}
	}, func() time.Time { return now }, nil)
}

func TestManagerUsesDurableStore(t *testing.T) {
	durable := &recordingStore{decision: Decision{Allowed: true, Remaining: 4}}
	m := newTestManager(durable, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	decision := m.CheckAndRecord(context.Background(), "student-1", Limits{Window: time.Minute, MaxRequests: 5})
	if !decision.Allowed || decision.Remaining != 4 {
		t.Fatalf("expected durable decision, got %+v", decision)
	}
	if durable.calls != 1 {
		t.Fatalf("expected one durable call, got %d", durable.calls)
	}
}

func TestManagerFallsBackToMemoryOnStorageFailure(t *testing.T) {
	durable := &failingStore{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTestManager(durable, now)
	limits := Limits{Window: time.Minute, MaxRequests: 5}

	// The memory path alone still enforces the bound.
	for i := 0; i < 5; i++ {
		if d := m.CheckAndRecord(context.Background(), "student-1", limits); !d.Allowed {
			t.Fatalf("call %d should be allowed via fallback", i+1)
		}
	}
	if d := m.CheckAndRecord(context.Background(), "student-1", limits); d.Allowed {
		t.Fatal("sixth call should be denied via fallback")
	}
	// The breaker keeps the durable store out of the hot path after the
	// first failure.
	if durable.calls != 1 {
		t.Fatalf("expected breaker to stop retries, got %d durable calls", durable.calls)
	}
}

func TestManagerBreakerRetriesAfterCooldown(t *testing.T) {
	durable := &failingStore{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(durable, func() SettingsConfig {
		return SettingsConfig{MaxRequests: 5, WindowSeconds: 60}
	}, func() time.Time { return now }, nil)
	limits := Limits{Window: time.Minute, MaxRequests: 5}

	m.CheckAndRecord(context.Background(), "p", limits)
	if durable.calls != 1 {
		t.Fatalf("expected one durable attempt, got %d", durable.calls)
	}

	now = now.Add(31 * time.Second)
	m.CheckAndRecord(context.Background(), "p", limits)
	if durable.calls != 2 {
		t.Fatalf("expected retry after breaker expiry, got %d attempts", durable.calls)
	}
}

func TestManagerPrincipalIsolationUnderFallback(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTestManager(&failingStore{}, now)
	limits := Limits{Window: time.Minute, MaxRequests: 5}

	for i := 0; i < 5; i++ {
		m.CheckAndRecord(context.Background(), "student-1", limits)
	}
	if d := m.CheckAndRecord(context.Background(), "student-1", limits); d.Allowed {
		t.Fatal("student-1 should be exhausted")
	}
	if d := m.CheckAndRecord(context.Background(), "student-2", limits); !d.Allowed {
		t.Fatal("student-2 budget must be independent")
	}
}

func TestManagerZeroLimitAllows(t *testing.T) {
	m := newTestManager(&failingStore{}, time.Now())
	if d := m.CheckAndRecord(context.Background(), "p", Limits{Window: time.Minute}); !d.Allowed {
		t.Fatal("zero max requests means unlimited")
	}
}
