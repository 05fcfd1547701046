package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/config"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/security"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	log "github.com/sirupsen/logrus"
)

// EnsureAdmin seeds the first admin account from ADMIN_USERNAME and
// ADMIN_PASSWORD when no admin exists yet. The public registration endpoint
// only creates regular users, so without this there is no way to mint the
// first admin.
func EnsureAdmin(ctx context.Context, storage *store.Storage) error {
	username := strings.TrimSpace(os.Getenv(config.EnvAdminUsername))
	password := os.Getenv(config.EnvAdminPassword)
	if username == "" || password == "" {
		return nil
	}

	exists, errCheck := storage.HasAdmin(ctx)
	if errCheck != nil {
		return errCheck
	}
	if exists {
		return nil
	}

	if len(password) < 6 {
		return fmt.Errorf("admin password must be at least 6 characters")
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash admin password: %w", errHash)
	}

	admin := models.User{
		Username: username,
		Email:    username + "@localhost",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if errCreate := storage.CreateUser(ctx, &admin); errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.Infof("seeded admin account %q", username)
	return nil
}
