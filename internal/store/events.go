package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/db"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"gorm.io/gorm"
)

// CreateEvent persists a new event and derives its registration and QR URLs
// from the assigned ID inside the same transaction. The URLs are
// denormalized fields, never client input.
func (s *Storage) CreateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("store: nil event")
	}

	now := nowUTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(event).Error; errCreate != nil {
			return errCreate
		}
		event.RegistrationURL = fmt.Sprintf("%s/register/%d", s.baseURL, event.ID)
		event.QrCodeURL = fmt.Sprintf("%s/api/events/%d/qr", s.baseURL, event.ID)
		return tx.Model(&models.Event{}).Where("id = ?", event.ID).Updates(map[string]any{
			"registration_url": event.RegistrationURL,
			"qr_code_url":      event.QrCodeURL,
		}).Error
	})
	if errTx != nil {
		return wrapStorage("create event", errTx)
	}
	return nil
}

// GetEvent returns an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id uint64) (*models.Event, error) {
	var event models.Event
	if errFind := s.db.WithContext(ctx).First(&event, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get event", errFind)
	}
	return &event, nil
}

// EventListFilter narrows ListEvents results.
type EventListFilter struct {
	UserID   uint64 // Restrict to events owned by this user when non-zero.
	IsActive *bool  // Restrict by active flag when set.
	Search   string // Case-insensitive name substring.
}

// ListEvents returns events ordered by creation time, newest first.
func (s *Storage) ListEvents(ctx context.Context, filter EventListFilter) ([]models.Event, error) {
	q := s.db.WithContext(ctx).Model(&models.Event{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+search+"%")
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "name"), pattern)
	}

	var rows []models.Event
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, wrapStorage("list events", errFind)
	}
	return rows, nil
}

// EventUpdate carries the mutable event fields; nil means "leave unchanged".
type EventUpdate struct {
	Name        *string
	Description *string
	EventDate   *string
	EventTime   *string
	IsActive    *bool
}

// UpdateEvent applies a partial update and returns the updated record.
// The updated_at timestamp always refreshes, even for an empty update.
func (s *Storage) UpdateEvent(ctx context.Context, id uint64, update EventUpdate) (*models.Event, error) {
	updates := map[string]any{"updated_at": nowUTC()}
	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			updates["name"] = name
		}
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.EventDate != nil {
		updates["event_date"] = *update.EventDate
	}
	if update.EventTime != nil {
		updates["event_time"] = *update.EventTime
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	res := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapStorage("update event", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes an event together with its registrations and
// customization documents. Returns false when the event did not exist.
func (s *Storage) DeleteEvent(ctx context.Context, id uint64) (bool, error) {
	var event models.Event
	if errFind := s.db.WithContext(ctx).First(&event, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, wrapStorage("get event", errFind)
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDel := tx.Where("event_id = ?", id).Delete(&models.Registration{}).Error; errDel != nil {
			return errDel
		}
		if errDel := tx.Where("event_id = ?", id).Delete(&models.QrSettings{}).Error; errDel != nil {
			return errDel
		}
		if errDel := tx.Where("event_id = ?", id).Delete(&models.FormSchema{}).Error; errDel != nil {
			return errDel
		}
		return tx.Delete(&models.Event{}, id).Error
	})
	if errTx != nil {
		return false, wrapStorage("delete event", errTx)
	}
	return true, nil
}
