package models

import (
	"time"

	"gorm.io/datatypes"
)

// FormSchema holds the per-event registration form definition built by the
// drag-and-drop editor. Stored as an opaque document.
type FormSchema struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	EventID uint64 `gorm:"not null;index" json:"eventId"` // Described event ID.
	Event   *Event `gorm:"foreignKey:EventID" json:"-"`   // Described event.

	Schema datatypes.JSON `json:"schema"` // Opaque field-definition document.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
