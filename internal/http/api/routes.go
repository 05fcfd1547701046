package api

import (
	"github.com/ExpertDevUX/QRFormv4/internal/auth"
	"github.com/ExpertDevUX/QRFormv4/internal/http/api/handlers"
	"github.com/ExpertDevUX/QRFormv4/internal/ratelimit"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every route registered. A nil
// throttle disables the login attempt limiter.
func NewRouter(storage *store.Storage, service *auth.Service, cookie handlers.CookieConfig, throttle *ratelimit.Manager) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	RegisterRoutes(engine, storage, service, cookie, throttle)
	return engine
}

// RegisterRoutes wires the handler set onto the engine.
func RegisterRoutes(engine *gin.Engine, storage *store.Storage, service *auth.Service, cookie handlers.CookieConfig, throttle *ratelimit.Manager) {
	authHandler := handlers.NewAuthHandler(service, cookie, throttle)
	userHandler := handlers.NewUserHandler(storage)
	eventHandler := handlers.NewEventHandler(storage)
	registrationHandler := handlers.NewRegistrationHandler(storage)
	documentHandler := handlers.NewDocumentHandler(storage)
	statsHandler := handlers.NewStatsHandler(storage)
	healthHandler := handlers.NewHealthHandler(storage)

	requireAuth := RequireAuth(storage, cookie)
	requireAdmin := RequireAdmin()

	engine.GET("/healthz", healthHandler.Check)

	apiGroup := engine.Group("/api")

	// Authentication.
	apiGroup.POST("/register", authHandler.Register)
	apiGroup.POST("/login", authHandler.Login)
	apiGroup.POST("/logout", authHandler.Logout)
	apiGroup.GET("/user", requireAuth, authHandler.CurrentUser)

	// Admin user management.
	users := apiGroup.Group("/users", requireAuth, requireAdmin)
	users.GET("", userHandler.List)
	users.PATCH("/:id/ban", userHandler.Ban)
	users.PATCH("/:id/unban", userHandler.Unban)
	users.DELETE("/:id", userHandler.Delete)

	// Events. Reading one is public so the registration page can render it;
	// everything else is owner-or-admin.
	apiGroup.GET("/events/:id", eventHandler.Get)
	apiGroup.GET("/events", requireAuth, eventHandler.List)
	apiGroup.POST("/events", requireAuth, eventHandler.Create)
	apiGroup.PATCH("/events/:id", requireAuth, eventHandler.Update)
	apiGroup.DELETE("/events/:id", requireAuth, eventHandler.Delete)

	// Attendee registrations. Public by design: attendees have no account.
	apiGroup.GET("/registrations", registrationHandler.List)
	apiGroup.GET("/registrations/:id", registrationHandler.Get)
	apiGroup.POST("/registrations", registrationHandler.Create)
	apiGroup.PATCH("/registrations/:id", registrationHandler.Update)
	apiGroup.DELETE("/registrations/:id", registrationHandler.Delete)

	// Per-event customization documents.
	qrSettings := apiGroup.Group("/qr-settings", requireAuth)
	qrSettings.POST("", documentHandler.UpsertQrSettings)
	qrSettings.GET("/:eventId", documentHandler.GetQrSettings)
	qrSettings.DELETE("/:eventId", documentHandler.DeleteQrSettings)

	formSchemas := apiGroup.Group("/form-schemas", requireAuth)
	formSchemas.POST("", documentHandler.UpsertFormSchema)
	formSchemas.GET("/:eventId", documentHandler.GetFormSchema)
	formSchemas.DELETE("/:eventId", documentHandler.DeleteFormSchema)

	// Dashboard counters and the export counter.
	apiGroup.GET("/stats", statsHandler.Get)
	apiGroup.POST("/export", statsHandler.Export)
}
