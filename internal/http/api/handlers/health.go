package handlers

import (
	"net/http"

	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	storage *store.Storage
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(storage *store.Storage) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Check pings the database and reports service health.
func (h *HealthHandler) Check(c *gin.Context) {
	if errPing := h.storage.Ping(c.Request.Context()); errPing != nil {
		log.WithError(errPing).Error("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
