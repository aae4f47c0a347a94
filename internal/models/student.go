package models

import "time"

// Student represents a learner account provisioned from the learning
// platform webhook.
type Student struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	StudentID string `gorm:"type:text;not null;uniqueIndex"` // External platform identifier.
	Email     string `gorm:"type:text;not null;uniqueIndex"` // Email address.
	Name      string `gorm:"type:text"`                      // Display name.

	TotalMessages int64 `gorm:"not null;default:0"` // Lifetime message counter.

	Messages []Message `gorm:"foreignKey:StudentID;references:StudentID"` // Conversation history.

	CreatedAt  time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	LastActive time.Time `gorm:"not null"`                // Last activity timestamp.
}
