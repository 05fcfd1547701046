// Package app boots the service: configuration, database, storage, HTTP
// server and background workers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ExpertDevUX/QRFormv4/internal/auth"
	"github.com/ExpertDevUX/QRFormv4/internal/config"
	"github.com/ExpertDevUX/QRFormv4/internal/db"
	"github.com/ExpertDevUX/QRFormv4/internal/http/api"
	"github.com/ExpertDevUX/QRFormv4/internal/http/api/handlers"
	"github.com/ExpertDevUX/QRFormv4/internal/ratelimit"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// sessionSweepInterval is how often expired session rows are swept.
const sessionSweepInterval = time.Hour

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components and blocks
// until the context is cancelled or the listener fails.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	sessionCfg, err := config.LoadSessionConfig(configPath)
	if err != nil {
		// Fail fast: a placeholder secret in production makes every cookie
		// forgeable.
		return err
	}
	baseURL := config.LoadBaseURL(configPath)

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	storage := store.New(conn, baseURL, store.WithSessionTTL(sessionCfg.TTL))
	if errBootstrap := EnsureAdmin(ctx, storage); errBootstrap != nil {
		return errBootstrap
	}
	storage.StartSessionSweep(ctx, sessionSweepInterval)

	service := auth.NewService(storage)
	cookie := handlers.NewCookieConfig(sessionCfg.Secret, int(storage.SessionTTL().Seconds()), baseURL)
	throttle := ratelimit.NewManager(ratelimit.LoadConfig(), nil, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := api.NewRouter(storage, service, cookie, throttle)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting server on %s with config=%s", srv.Addr, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	return nil
}
