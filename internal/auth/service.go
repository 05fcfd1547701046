// Package auth implements registration, login and logout over the store and
// the credential hasher. A session is regenerated on every successful
// credential-verifying operation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/security"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	log "github.com/sirupsen/logrus"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// ErrInvalidCredentials is returned for every login failure: unknown
// username, wrong password, or banned account. The caller must not be able
// to tell which.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports a malformed registration field.
type ValidationError struct {
	Field   string // Offending field name.
	Message string // Human-readable detail.
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SanitizedUser is the user view that leaves the core. It never carries the
// password hash.
type SanitizedUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sanitize strips a user record down to its public view.
func Sanitize(user *models.User) SanitizedUser {
	return SanitizedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Banned:    user.Banned,
		CreatedAt: user.CreatedAt,
	}
}

// Service wires the credential hasher and the store into the authentication
// flows.
type Service struct {
	storage *store.Storage
}

// NewService constructs a Service.
func NewService(storage *store.Storage) *Service {
	return &Service{storage: storage}
}

// Register validates input, creates the user and issues a fresh session.
// Role and banned are forced regardless of anything the client sent; the
// public endpoint can never mint an admin. The previous session, if any, is
// invalidated.
func (s *Service) Register(ctx context.Context, username, email, password, oldSessionID string) (SanitizedUser, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return SanitizedUser{}, "", &ValidationError{Field: "username", Message: "username is required"}
	}
	if email == "" {
		return SanitizedUser{}, "", &ValidationError{Field: "email", Message: "email is required"}
	}
	if !strings.Contains(email, "@") {
		return SanitizedUser{}, "", &ValidationError{Field: "email", Message: "email is invalid"}
	}
	if len(password) < MinPasswordLength {
		return SanitizedUser{}, "", &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		}
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return SanitizedUser{}, "", fmt.Errorf("auth: hash password: %w", errHash)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Banned:   false,
	}
	if errCreate := s.storage.CreateUser(ctx, &user); errCreate != nil {
		return SanitizedUser{}, "", errCreate
	}

	sessionID, errSession := s.issueSession(ctx, user.ID, oldSessionID)
	if errSession != nil {
		return SanitizedUser{}, "", errSession
	}
	return Sanitize(&user), sessionID, nil
}

// Login verifies credentials and issues a fresh session. Every failure path
// returns ErrInvalidCredentials; an unknown username still burns a hash
// derivation so the timing does not differ from a wrong password.
func (s *Service) Login(ctx context.Context, username, password, oldSessionID string) (SanitizedUser, string, error) {
	user, errFind := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			security.HashPassword(password)
			return SanitizedUser{}, "", ErrInvalidCredentials
		}
		return SanitizedUser{}, "", errFind
	}

	ok, errVerify := security.VerifyPassword(password, user.Password)
	if errVerify != nil {
		if errors.Is(errVerify, security.ErrMalformedCredential) {
			// Corrupt stored hash: a data-integrity problem for this record,
			// reported to the client as a plain credential failure.
			log.WithField("userID", user.ID).Error("stored credential is malformed")
			return SanitizedUser{}, "", ErrInvalidCredentials
		}
		return SanitizedUser{}, "", errVerify
	}
	if !ok || user.Banned {
		return SanitizedUser{}, "", ErrInvalidCredentials
	}

	sessionID, errSession := s.issueSession(ctx, user.ID, oldSessionID)
	if errSession != nil {
		return SanitizedUser{}, "", errSession
	}
	return Sanitize(user), sessionID, nil
}

// Logout destroys the session. It is idempotent: an empty or unknown
// session id still succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.storage.DestroySession(ctx, sessionID)
}

// issueSession invalidates the caller's previous session and creates a new
// one, so a pre-authentication session id never survives authentication. With
// a previous session present the swap happens in one transaction.
func (s *Service) issueSession(ctx context.Context, userID uint64, oldSessionID string) (string, error) {
	if oldSessionID != "" {
		return s.storage.RegenerateSession(ctx, oldSessionID, userID)
	}
	return s.storage.CreateSession(ctx, userID)
}
