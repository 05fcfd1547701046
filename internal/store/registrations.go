package store

import (
	"context"
	"errors"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateRegistration persists an attendee submission. The target event must
// exist; attendee identity is deliberately not deduplicated.
func (s *Storage) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	if registration == nil {
		return errors.New("store: nil registration")
	}

	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", registration.EventID).Count(&count).Error; errCount != nil {
		return wrapStorage("check event", errCount)
	}
	if count == 0 {
		return ErrNotFound
	}

	registration.RegisteredAt = nowUTC()
	if errCreate := s.db.WithContext(ctx).Create(registration).Error; errCreate != nil {
		return wrapStorage("create registration", errCreate)
	}
	return nil
}

// GetRegistration returns a registration by ID.
func (s *Storage) GetRegistration(ctx context.Context, id uint64) (*models.Registration, error) {
	var registration models.Registration
	if errFind := s.db.WithContext(ctx).First(&registration, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get registration", errFind)
	}
	return &registration, nil
}

// ListRegistrations returns registrations ordered by submission time, newest
// first, optionally filtered to one event.
func (s *Storage) ListRegistrations(ctx context.Context, eventID uint64) ([]models.Registration, error) {
	q := s.db.WithContext(ctx).Model(&models.Registration{})
	if eventID != 0 {
		q = q.Where("event_id = ?", eventID)
	}

	var rows []models.Registration
	if errFind := q.Order("registered_at DESC").Find(&rows).Error; errFind != nil {
		return nil, wrapStorage("list registrations", errFind)
	}
	return rows, nil
}

// RegistrationUpdate carries the mutable registration fields; nil means
// "leave unchanged".
type RegistrationUpdate struct {
	Name       *string
	Phone      *string
	Position   *string
	Email      *string
	CustomData []byte
}

// UpdateRegistration applies a partial update and returns the updated record.
func (s *Storage) UpdateRegistration(ctx context.Context, id uint64, update RegistrationUpdate) (*models.Registration, error) {
	updates := map[string]any{}
	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			updates["name"] = name
		}
	}
	if update.Phone != nil {
		updates["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.Position != nil {
		updates["position"] = *update.Position
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.CustomData != nil {
		updates["custom_data"] = datatypes.JSON(update.CustomData)
	}
	if len(updates) == 0 {
		return s.GetRegistration(ctx, id)
	}

	res := s.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapStorage("update registration", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetRegistration(ctx, id)
}

// DeleteRegistration removes a registration. Returns false when the id did
// not exist.
func (s *Storage) DeleteRegistration(ctx context.Context, id uint64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.Registration{}, id)
	if res.Error != nil {
		return false, wrapStorage("delete registration", res.Error)
	}
	return res.RowsAffected > 0, nil
}
