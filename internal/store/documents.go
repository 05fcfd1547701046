package store

import (
	"context"
	"errors"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The per-event customization records hold documents the UI layer defines.
// The core persists and returns them without inspecting their shape.

// UpsertQrSettings creates or replaces the QR customization document for an
// event and returns the stored record.
func (s *Storage) UpsertQrSettings(ctx context.Context, eventID uint64, settings []byte) (*models.QrSettings, error) {
	if exists, errCheck := s.eventExists(ctx, eventID); errCheck != nil {
		return nil, errCheck
	} else if !exists {
		return nil, ErrNotFound
	}

	now := nowUTC()
	var existing models.QrSettings
	errFind := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&existing).Error
	if errFind == nil {
		if errUpdate := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"settings":   datatypes.JSON(settings),
			"updated_at": now,
		}).Error; errUpdate != nil {
			return nil, wrapStorage("update qr settings", errUpdate)
		}
		return s.GetQrSettings(ctx, eventID)
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, wrapStorage("get qr settings", errFind)
	}

	record := models.QrSettings{
		EventID:   eventID,
		Settings:  datatypes.JSON(settings),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
		return nil, wrapStorage("create qr settings", errCreate)
	}
	return &record, nil
}

// GetQrSettings returns the QR customization document for an event.
func (s *Storage) GetQrSettings(ctx context.Context, eventID uint64) (*models.QrSettings, error) {
	var record models.QrSettings
	if errFind := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&record).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get qr settings", errFind)
	}
	return &record, nil
}

// DeleteQrSettings removes the QR customization document for an event.
// Returns false when none existed.
func (s *Storage) DeleteQrSettings(ctx context.Context, eventID uint64) (bool, error) {
	res := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.QrSettings{})
	if res.Error != nil {
		return false, wrapStorage("delete qr settings", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpsertFormSchema creates or replaces the form definition for an event and
// returns the stored record.
func (s *Storage) UpsertFormSchema(ctx context.Context, eventID uint64, schema []byte) (*models.FormSchema, error) {
	if exists, errCheck := s.eventExists(ctx, eventID); errCheck != nil {
		return nil, errCheck
	} else if !exists {
		return nil, ErrNotFound
	}

	now := nowUTC()
	var existing models.FormSchema
	errFind := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&existing).Error
	if errFind == nil {
		if errUpdate := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"schema":     datatypes.JSON(schema),
			"updated_at": now,
		}).Error; errUpdate != nil {
			return nil, wrapStorage("update form schema", errUpdate)
		}
		return s.GetFormSchema(ctx, eventID)
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, wrapStorage("get form schema", errFind)
	}

	record := models.FormSchema{
		EventID:   eventID,
		Schema:    datatypes.JSON(schema),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
		return nil, wrapStorage("create form schema", errCreate)
	}
	return &record, nil
}

// GetFormSchema returns the form definition for an event.
func (s *Storage) GetFormSchema(ctx context.Context, eventID uint64) (*models.FormSchema, error) {
	var record models.FormSchema
	if errFind := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&record).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get form schema", errFind)
	}
	return &record, nil
}

// DeleteFormSchema removes the form definition for an event. Returns false
// when none existed.
func (s *Storage) DeleteFormSchema(ctx context.Context, eventID uint64) (bool, error) {
	res := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.FormSchema{})
	if res.Error != nil {
		return false, wrapStorage("delete form schema", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// eventExists reports whether an event row exists.
func (s *Storage) eventExists(ctx context.Context, eventID uint64) (bool, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).Count(&count).Error; errCount != nil {
		return false, wrapStorage("check event", errCount)
	}
	return count > 0, nil
}
