package models

import "time"

// RateLimitEntry is one recorded request inside a principal's sliding
// window. Expired rows are purged lazily on each limiter check.
type RateLimitEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PrincipalID string    `gorm:"type:text;not null;index:idx_rate_limits_principal_time,priority:1"`  // Student or admin identifier.
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;index:idx_rate_limits_principal_time,priority:2"` // Request timestamp.
}
