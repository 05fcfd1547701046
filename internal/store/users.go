package store

import (
	"context"
	"errors"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/db"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"gorm.io/gorm"
)

// CreateUser persists a new user. The caller supplies an already-hashed
// credential; role and banned are taken from the record as given.
// Uniqueness is checked up front; a concurrent duplicate insert that slips
// past the check is caught via the unique constraint and reported the same
// way.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("store: nil user")
	}

	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", user.Username).Count(&count).Error; errCount != nil {
		return wrapStorage("check username", errCount)
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", user.Email).Count(&count).Error; errCount != nil {
		return wrapStorage("check email", errCount)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	now := nowUTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if errCreate := s.db.WithContext(ctx).Create(user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return s.classifyDuplicateUser(ctx, user.Username)
		}
		return wrapStorage("create user", errCreate)
	}
	return nil
}

// classifyDuplicateUser resolves which unique constraint a racing insert
// hit. The losing insert must still report the specific field.
func (s *Storage) classifyDuplicateUser(ctx context.Context, username string) error {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; errCount != nil {
		return wrapStorage("check username", errCount)
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}

// GetUser returns a user by ID.
func (s *Storage) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get user", errFind)
	}
	return &user, nil
}

// GetUserByUsername returns a user by exact, case-sensitive username match.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get user by username", errFind)
	}
	return &user, nil
}

// UserListFilter narrows ListUsers results.
type UserListFilter struct {
	Username string // Case-insensitive username substring.
	Email    string // Case-insensitive email substring.
	Search   string // Matches username or email.
}

// ListUsers returns users ordered by creation time, newest first.
func (s *Storage) ListUsers(ctx context.Context, filter UserListFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if username := strings.TrimSpace(filter.Username); username != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+username+"%")
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "username"), pattern)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+email+"%")
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "email"), pattern)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+search+"%")
		q = q.Where(
			"("+db.CaseInsensitiveLikeExpr(s.db, "username")+" OR "+db.CaseInsensitiveLikeExpr(s.db, "email")+")",
			pattern,
			pattern,
		)
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, wrapStorage("list users", errFind)
	}
	return rows, nil
}

// SetUserBanned flips the banned flag on a user.
func (s *Storage) SetUserBanned(ctx context.Context, id uint64, banned bool) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"banned": banned, "updated_at": nowUTC()})
	if res.Error != nil {
		return nil, wrapStorage("set user banned", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and everything it owns: sessions, events, and
// each event's registrations and customization documents. Returns false when
// the user did not exist.
func (s *Storage) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, wrapStorage("get user", errFind)
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eventIDs []uint64
		if errIDs := tx.Model(&models.Event{}).Where("user_id = ?", id).
			Pluck("id", &eventIDs).Error; errIDs != nil {
			return errIDs
		}
		if len(eventIDs) > 0 {
			if errDel := tx.Where("event_id IN ?", eventIDs).Delete(&models.Registration{}).Error; errDel != nil {
				return errDel
			}
			if errDel := tx.Where("event_id IN ?", eventIDs).Delete(&models.QrSettings{}).Error; errDel != nil {
				return errDel
			}
			if errDel := tx.Where("event_id IN ?", eventIDs).Delete(&models.FormSchema{}).Error; errDel != nil {
				return errDel
			}
			if errDel := tx.Where("user_id = ?", id).Delete(&models.Event{}).Error; errDel != nil {
				return errDel
			}
		}
		if errDel := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; errDel != nil {
			return errDel
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if errTx != nil {
		return false, wrapStorage("delete user", errTx)
	}
	return true, nil
}

// CountUsers returns the total number of users.
func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; errCount != nil {
		return 0, wrapStorage("count users", errCount)
	}
	return count, nil
}

// HasAdmin reports whether at least one admin account exists.
func (s *Storage) HasAdmin(ctx context.Context) (bool, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).Count(&count).Error; errCount != nil {
		return false, wrapStorage("count admins", errCount)
	}
	return count > 0, nil
}
