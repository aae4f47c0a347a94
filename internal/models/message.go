package models

import "time"

// Message roles stored in conversation history.
const (
	// RoleStudent marks a message written by the student.
	RoleStudent = "student"
	// RoleTutor marks a reply produced by the tutor (model or canned).
	RoleTutor = "tutor"
)

// Message is one turn of conversation history.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	StudentID string `gorm:"type:text;not null;index:idx_messages_student_time,priority:1"` // Owning student.
	Role      string `gorm:"type:text;not null"`                                            // RoleStudent or RoleTutor.
	Body      string `gorm:"type:text;not null"`                                            // Message text.
	SessionID string `gorm:"type:text;index"`                                               // Chat session grouping.

	TokensEst      *int64 `gorm:"type:bigint"` // Rough token estimate, tutor turns only.
	ResponseTimeMS *int64 `gorm:"type:bigint"` // Generation latency, tutor turns only.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_messages_student_time,priority:2"` // Creation timestamp.
}
