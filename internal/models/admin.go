package models

import "time"

// Admin represents a moderator/operator account. Admins are provisioned
// from the email allow-list on first token issuance; a password can be
// set afterwards for dashboard login.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AdminID string `gorm:"type:text;not null;uniqueIndex"` // External platform identifier.
	Email   string `gorm:"type:text;not null;uniqueIndex"` // Email address.
	Name    string `gorm:"type:text"`                      // Display name.

	Password   string `gorm:"type:text"` // Bcrypt hash, empty until set.
	TOTPSecret string `gorm:"type:text"` // TOTP secret for MFA, empty when disabled.

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	CreatedAt  time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	LastActive time.Time `gorm:"not null"`                // Last activity timestamp.
}
