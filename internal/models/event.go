package models

import "time"

// Event represents a registration campaign owned by a user.
type Event struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"userId"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"-"`   // Owning user.

	Name        string `gorm:"type:text;not null" json:"name"` // Display name.
	Description string `gorm:"type:text" json:"description"`   // Optional description.
	EventDate   string `gorm:"type:text" json:"eventDate"`     // Optional display date.
	EventTime   string `gorm:"type:text" json:"eventTime"`     // Optional display time.

	QrCodeURL       string `gorm:"type:text" json:"qrCodeUrl"`       // Derived QR image endpoint.
	RegistrationURL string `gorm:"type:text" json:"registrationUrl"` // Derived public registration URL.

	IsActive bool `gorm:"not null;default:true" json:"isActive"` // Whether registrations are accepted.

	Registrations []Registration `gorm:"foreignKey:EventID" json:"-"` // Collected registrations.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
