package db

import (
	"fmt"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"gorm.io/gorm"
)

// Migrate runs schema migrations and applies the listing indexes.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Event{},
		&models.Registration{},
		&models.QrSettings{},
		&models.FormSchema{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_users_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_created_at
				ON users (created_at DESC)
			`,
		},
		{
			name: "idx_events_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_events_user_id_created_at
				ON events (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_events_is_active_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_events_is_active_created_at
				ON events (is_active, created_at DESC)
			`,
		},
		{
			name: "idx_registrations_event_id_registered_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_registrations_event_id_registered_at
				ON registrations (event_id, registered_at DESC)
			`,
		},
		{
			name: "idx_sessions_expires_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at
				ON sessions (expires_at)
			`,
		},
		{
			name: "idx_qr_settings_event_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_qr_settings_event_id
				ON qr_settings (event_id)
			`,
		},
		{
			name: "idx_form_schemas_event_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_form_schemas_event_id
				ON form_schemas (event_id)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}
