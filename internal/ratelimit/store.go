package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenlearn/tutor-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore implements the durable sliding window over the
// rate_limit_entries table, shared across horizontally scaled instances.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CheckAndRecord purges expired entries, counts the principal's requests
// still inside the window, and inserts the current request only when the
// count is below the cap. A denied request does not consume a slot.
func (s *GormStore) CheckAndRecord(ctx context.Context, principalID string, limits Limits, now time.Time) (Decision, error) {
	if s == nil || s.db == nil {
		return Decision{}, fmt.Errorf("rate limit store: not initialized")
	}
	if limits.MaxRequests <= 0 || principalID == "" {
		return Decision{Allowed: true}, nil
	}
	cutoff := now.Add(-limits.Window)

	decision := Decision{}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errPurge := tx.Where("created_at < ?", cutoff).
			Delete(&models.RateLimitEntry{}).Error; errPurge != nil {
			return fmt.Errorf("purge expired entries: %w", errPurge)
		}

		var count int64
		if errCount := tx.Model(&models.RateLimitEntry{}).
			Where("principal_id = ? AND created_at >= ?", principalID, cutoff).
			Count(&count).Error; errCount != nil {
			return fmt.Errorf("count window entries: %w", errCount)
		}

		if count >= int64(limits.MaxRequests) {
			decision = Decision{Allowed: false, Remaining: 0}
			return nil
		}

		entry := models.RateLimitEntry{PrincipalID: principalID, CreatedAt: now}
		if errInsert := tx.Create(&entry).Error; errInsert != nil {
			return fmt.Errorf("record request: %w", errInsert)
		}
		decision = Decision{Allowed: true, Remaining: limits.MaxRequests - int(count) - 1}
		return nil
	})
	if errTx != nil {
		return Decision{}, errTx
	}
	return decision, nil
}
