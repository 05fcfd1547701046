package models

import (
	"time"

	"gorm.io/datatypes"
)

// Registration is one attendee submission against an event. Duplicate
// submissions by the same attendee are permitted.
type Registration struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	EventID uint64 `gorm:"not null;index" json:"eventId"` // Target event ID.
	Event   *Event `gorm:"foreignKey:EventID" json:"-"`   // Target event.

	Name     string `gorm:"type:text;not null" json:"name"`  // Attendee name.
	Phone    string `gorm:"type:text;not null" json:"phone"` // Attendee phone.
	Position string `gorm:"type:text" json:"position"`       // Optional position/title.
	Email    string `gorm:"type:text" json:"email"`          // Optional email.

	CustomData datatypes.JSON `json:"customData"` // Dynamic form field values, opaque to the core.

	RegisteredAt time.Time `gorm:"not null;autoCreateTime" json:"registeredAt"` // Submission timestamp.
}
