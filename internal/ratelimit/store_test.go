package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.RateLimitEntry{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestGormStoreEnforcesWindow(t *testing.T) {
	store := NewGormStore(newTestDB(t))
	limits := Limits{Window: 60 * time.Second, MaxRequests: 5}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		decision, err := store.CheckAndRecord(context.Background(), "student-1", limits, now.Add(time.Duration(i)*time.Second))
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

	denied, err := store.CheckAndRecord(context.Background(), "student-1", limits, now.Add(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denied.Allowed {
		t.Fatal("sixth call inside the window should be denied")
	}
	if denied.Remaining != 0 {
		t.Fatalf("expected remaining=0, got %d", denied.Remaining)
	}

	// The first entry ages out after its own timestamp plus the window.
	later, err := store.CheckAndRecord(context.Background(), "student-1", limits, now.Add(61*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !later.Allowed {
		t.Fatal("call after window expiry should be allowed")
	}
}

func TestGormStorePurgesExpiredEntries(t *testing.T) {
	conn := newTestDB(t)
	store := NewGormStore(conn)
	limits := Limits{Window: 60 * time.Second, MaxRequests: 5}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := store.CheckAndRecord(context.Background(), "student-1", limits, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.CheckAndRecord(context.Background(), "student-1", limits, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	if err := conn.Model(&models.RateLimitEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected expired entries purged, found %d rows", count)
	}
}

func TestGormStorePrincipalIsolation(t *testing.T) {
	store := NewGormStore(newTestDB(t))
	limits := Limits{Window: 60 * time.Second, MaxRequests: 2}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if d, err := store.CheckAndRecord(context.Background(), "a", limits, now); err != nil || !d.Allowed {
			t.Fatalf("principal a call %d: decision=%+v err=%v", i+1, d, err)
		}
	}
	if d, _ := store.CheckAndRecord(context.Background(), "a", limits, now); d.Allowed {
		t.Fatal("principal a should be exhausted")
	}
	if d, err := store.CheckAndRecord(context.Background(), "b", limits, now); err != nil || !d.Allowed {
		t.Fatalf("principal b must have its own budget: decision=%+v err=%v", d, err)
	}
}
