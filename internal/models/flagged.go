package models

import (
	"time"

	"gorm.io/datatypes"
)

// FlaggedContent is a message held for moderation review after an unsafe
// safety verdict.
type FlaggedContent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	StudentID   string `gorm:"type:text;not null;index"` // Owning student.
	MessageID   uint64 `gorm:"not null;index"`           // Flagged message.
	MessageText string `gorm:"type:text;not null"`       // Original text, preserved verbatim.

	Category string         `gorm:"type:text;not null"` // Triggering harm category.
	Severity string         `gorm:"type:text;not null"` // Severity tier name.
	Reason   string         `gorm:"type:text;not null"` // Human-readable reason.
	Verdict  datatypes.JSON `gorm:"type:jsonb"`         // Full verdict snapshot.

	Reviewed   bool       `gorm:"not null;default:false"` // Whether a moderator reviewed it.
	ReviewedBy *uint64    `gorm:"index"`                  // Reviewing admin ID.
	ReviewedAt *time.Time // Review timestamp.

	FlaggedAt time.Time `gorm:"not null;autoCreateTime;index"` // Flag timestamp.
}
