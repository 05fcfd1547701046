package handlers

import (
	"net/http"

	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// StatsHandler serves the dashboard counters and the export counter.
type StatsHandler struct {
	storage *store.Storage
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(storage *store.Storage) *StatsHandler {
	return &StatsHandler{storage: storage}
}

// Get returns the aggregate counters.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, errStats := h.storage.GetStats(c.Request.Context())
	if errStats != nil {
		log.WithError(errStats).Error("get stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export bumps the export counter and returns the new value. The counter is
// process-lifetime only.
func (h *StatsHandler) Export(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"exportCount": h.storage.IncrementExportCount()})
}
