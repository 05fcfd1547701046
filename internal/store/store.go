// Package store is the data access layer. It is the only package that reads
// or writes persistent state; every other component treats the records it
// returns as plain values.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// Sentinel errors returned by storage operations. Callers match with
// errors.Is; "not found" is a typed result, never a thrown surprise.
var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrDuplicateEmail indicates the email is already taken.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrStorageUnavailable indicates the backing store could not serve the
	// request. The store never retries internally.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Storage exposes typed CRUD over users, sessions, events, registrations and
// the per-event customization documents.
type Storage struct {
	db      *gorm.DB
	baseURL string

	sessionTTL time.Duration

	// exportCount is process-lifetime state: it resets to zero on restart
	// and makes no durability promise.
	exportCount atomic.Int64
}

// Option configures a Storage.
type Option func(*Storage)

// WithSessionTTL overrides the fixed session lifetime. Useful in tests.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Storage) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// defaultSessionTTL is the fixed session lifetime measured from issuance.
const defaultSessionTTL = 24 * time.Hour

// New constructs a Storage. The base URL is used to derive event
// registration links at creation time.
func New(db *gorm.DB, baseURL string, opts ...Option) *Storage {
	s := &Storage{
		db:         db,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL returns the fixed session lifetime.
func (s *Storage) SessionTTL() time.Duration { return s.sessionTTL }

// Ping verifies the backing database connection.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, errDB := s.db.DB()
	if errDB != nil {
		return wrapStorage("ping", errDB)
	}
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		return wrapStorage("ping", errPing)
	}
	return nil
}

// wrapStorage classifies an unexpected database failure as
// ErrStorageUnavailable while keeping the underlying detail for logs.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("store: %s: %w: %s", op, ErrStorageUnavailable, err.Error())
}

// nowUTC returns the current UTC time.
func nowUTC() time.Time { return time.Now().UTC() }
