package models

import "time"

// Role values assignable to a user account.
const (
	// RoleUser is the default role for self-registered accounts.
	RoleUser = "user"
	// RoleAdmin grants access to the admin endpoints.
	RoleAdmin = "admin"
)

// User represents an account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Password string `gorm:"type:text;not null"`             // Hashed credential, never plaintext.

	Role   string `gorm:"type:text;not null;default:user"` // Either "user" or "admin".
	Banned bool   `gorm:"not null;default:false"`          // Whether gated requests are refused.

	Events []Event `gorm:"foreignKey:UserID"` // Events owned by this user.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
