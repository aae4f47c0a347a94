package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreEnforcesWindow(t *testing.T) {
	store := NewMemoryStore()
	limits := Limits{Window: 60 * time.Second, MaxRequests: 5}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		decision, err := store.CheckAndRecord(context.Background(), "student-1", limits, now)
		if err != nil {
			t.Fatalf("call %d: unexpected error %v", i+1, err)
		}
		if !decision.Allowed {
			t.Fatalf("call %d: expected allowed", i+1)
		}
		if decision.Remaining != 5-i-1 {
			t.Fatalf("call %d: expected remaining=%d, got %d", i+1, 5-i-1, decision.Remaining)
		}
	}

	denied, err := store.CheckAndRecord(context.Background(), "student-1", limits, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denied.Allowed {
		t.Fatal("sixth call inside the window should be denied")
	}
	if denied.Remaining != 0 {
		t.Fatalf("expected remaining=0 on denial, got %d", denied.Remaining)
	}

	// Past the window the budget resets.
	later := now.Add(61 * time.Second)
	allowed, err := store.CheckAndRecord(context.Background(), "student-1", limits, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed.Allowed {
		t.Fatal("call after window expiry should be allowed")
	}
}

func TestMemoryStoreDeniedRequestConsumesNothing(t *testing.T) {
	store := NewMemoryStore()
	limits := Limits{Window: 60 * time.Second, MaxRequests: 1}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if d, _ := store.CheckAndRecord(context.Background(), "p", limits, now); !d.Allowed {
		t.Fatal("first call should be allowed")
	}
	for i := 0; i < 3; i++ {
		if d, _ := store.CheckAndRecord(context.Background(), "p", limits, now.Add(time.Second)); d.Allowed {
			t.Fatal("call over the cap should be denied")
		}
	}
	// Only the single allowed request occupies the window, so one step
	// past its expiry the next request goes through.
	if d, _ := store.CheckAndRecord(context.Background(), "p", limits, now.Add(61*time.Second)); !d.Allowed {
		t.Fatal("denied requests must not extend the window")
	}
}

func TestMemoryStorePrincipalIsolation(t *testing.T) {
	store := NewMemoryStore()
	limits := Limits{Window: 60 * time.Second, MaxRequests: 5}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if d, _ := store.CheckAndRecord(context.Background(), "student-1", limits, now); !d.Allowed {
			t.Fatalf("student-1 call %d should be allowed", i+1)
		}
	}
	if d, _ := store.CheckAndRecord(context.Background(), "student-1", limits, now); d.Allowed {
		t.Fatal("student-1 should be exhausted")
	}
	for i := 0; i < 5; i++ {
		if d, _ := store.CheckAndRecord(context.Background(), "student-2", limits, now); !d.Allowed {
			t.Fatalf("student-2 call %d should be allowed", i+1)
		}
	}
}

func TestMemoryStoreZeroLimitAllows(t *testing.T) {
	store := NewMemoryStore()
	decision, err := store.CheckAndRecord(context.Background(), "p", Limits{Window: time.Minute}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("zero max requests means unlimited")
	}
}
