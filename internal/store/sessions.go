package store

import (
	"context"
	"errors"
	"time"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateSession issues a fresh session for the user and returns its opaque
// identifier. The expiry is fixed at issuance; there is no sliding window.
func (s *Storage) CreateSession(ctx context.Context, userID uint64) (string, error) {
	now := nowUTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&session).Error; errCreate != nil {
		return "", wrapStorage("create session", errCreate)
	}
	return session.ID, nil
}

// LoadSession resolves a session identifier to its bound user ID. Expired
// sessions read as ErrNotFound and their rows are removed lazily.
func (s *Storage) LoadSession(ctx context.Context, sessionID string) (uint64, error) {
	var session models.Session
	if errFind := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, wrapStorage("load session", errFind)
	}
	if !session.ExpiresAt.After(nowUTC()) {
		if errDel := s.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.Session{}).Error; errDel != nil {
			log.WithError(errDel).Warn("failed to remove expired session")
		}
		return 0, ErrNotFound
	}
	return session.UserID, nil
}

// DestroySession removes a session. Destroying an absent session is a no-op.
func (s *Storage) DestroySession(ctx context.Context, sessionID string) error {
	if errDel := s.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.Session{}).Error; errDel != nil {
		return wrapStorage("destroy session", errDel)
	}
	return nil
}

// RegenerateSession atomically invalidates the old session and issues a new
// identifier bound to the given user. Required after every credential-verifying
// operation to prevent session fixation. The old session is removed even when
// it belonged to a different account, such as a second login from the same
// browser.
func (s *Storage) RegenerateSession(ctx context.Context, oldSessionID string, userID uint64) (string, error) {
	now := nowUTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDel := tx.Where("id = ?", oldSessionID).Delete(&models.Session{}).Error; errDel != nil {
			return errDel
		}
		return tx.Create(&session).Error
	})
	if errTx != nil {
		return "", wrapStorage("regenerate session", errTx)
	}
	return session.ID, nil
}

// DeleteExpiredSessions removes sessions past their expiry and returns the
// number of rows removed.
func (s *Storage) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", nowUTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, wrapStorage("delete expired sessions", res.Error)
	}
	return res.RowsAffected, nil
}

// StartSessionSweep runs a background loop removing expired session rows
// until the context is cancelled. Loading already treats expired rows as
// absent; the sweep only keeps the table from growing.
func (s *Storage) StartSessionSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, errSweep := s.DeleteExpiredSessions(ctx)
				if errSweep != nil {
					log.WithError(errSweep).Warn("session sweep failed")
					continue
				}
				if removed > 0 {
					log.Infof("session sweep removed %d expired sessions", removed)
				}
			}
		}
	}()
}
