package models

import (
	"time"

	"gorm.io/datatypes"
)

// QrSettings holds per-event QR visual customization. The settings document
// is produced and consumed by the UI layer; the core never inspects it.
type QrSettings struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	EventID uint64 `gorm:"not null;index" json:"eventId"` // Customized event ID.
	Event   *Event `gorm:"foreignKey:EventID" json:"-"`   // Customized event.

	Settings datatypes.JSON `json:"settings"` // Opaque customization document.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
