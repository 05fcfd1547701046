package models

import "time"

// Session maps an opaque server-side identifier to a user. The client only
// ever holds the signed identifier in a cookie.
type Session struct {
	ID string `gorm:"primaryKey;size:64"` // Opaque session identifier (UUID).

	UserID uint64 `gorm:"not null;index"`    // Bound user account.
	User   *User  `gorm:"foreignKey:UserID"` // Bound user.

	ExpiresAt time.Time `gorm:"not null;index"`          // Fixed expiry measured from issuance.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issuance timestamp.
}
