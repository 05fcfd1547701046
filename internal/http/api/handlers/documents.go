package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DocumentHandler manages the per-event customization documents: QR styling
// settings and registration form schemas. The documents are opaque JSON; the
// server stores and returns them without inspecting their shape.
type DocumentHandler struct {
	storage *store.Storage
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(storage *store.Storage) *DocumentHandler {
	return &DocumentHandler{storage: storage}
}

// documentRequest wraps an event reference and an opaque document payload.
type documentRequest struct {
	EventID uint64          `json:"eventId"`
	Data    json.RawMessage `json:"data"`
}

// bindDocument parses a document body and validates the event reference.
func bindDocument(c *gin.Context) (documentRequest, bool) {
	var body documentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return documentRequest{}, false
	}
	if body.EventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return documentRequest{}, false
	}
	if len(body.Data) == 0 {
		body.Data = json.RawMessage("{}")
	}
	return body, true
}

// UpsertQrSettings creates or replaces the QR styling document for an event.
func (h *DocumentHandler) UpsertQrSettings(c *gin.Context) {
	body, ok := bindDocument(c)
	if !ok {
		return
	}
	record, errUpsert := h.storage.UpsertQrSettings(c.Request.Context(), body.EventID, body.Data)
	if errUpsert != nil {
		if errors.Is(errUpsert, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		log.WithError(errUpsert).Error("upsert qr settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save qr settings failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetQrSettings returns the QR styling document for an event.
func (h *DocumentHandler) GetQrSettings(c *gin.Context) {
	eventID, errParse := parseID(c.Param("eventId"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
		return
	}
	record, errFind := h.storage.GetQrSettings(c.Request.Context(), eventID)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errFind).Error("get qr settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get qr settings failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteQrSettings removes the QR styling document for an event.
func (h *DocumentHandler) DeleteQrSettings(c *gin.Context) {
	eventID, errParse := parseID(c.Param("eventId"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
		return
	}
	deleted, errDelete := h.storage.DeleteQrSettings(c.Request.Context(), eventID)
	if errDelete != nil {
		log.WithError(errDelete).Error("delete qr settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete qr settings failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertFormSchema creates or replaces the form definition for an event.
func (h *DocumentHandler) UpsertFormSchema(c *gin.Context) {
	body, ok := bindDocument(c)
	if !ok {
		return
	}
	record, errUpsert := h.storage.UpsertFormSchema(c.Request.Context(), body.EventID, body.Data)
	if errUpsert != nil {
		if errors.Is(errUpsert, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		log.WithError(errUpsert).Error("upsert form schema failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save form schema failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetFormSchema returns the form definition for an event.
func (h *DocumentHandler) GetFormSchema(c *gin.Context) {
	eventID, errParse := parseID(c.Param("eventId"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
		return
	}
	record, errFind := h.storage.GetFormSchema(c.Request.Context(), eventID)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errFind).Error("get form schema failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get form schema failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteFormSchema removes the form definition for an event.
func (h *DocumentHandler) DeleteFormSchema(c *gin.Context) {
	eventID, errParse := parseID(c.Param("eventId"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
		return
	}
	deleted, errDelete := h.storage.DeleteFormSchema(c.Request.Context(), eventID)
	if errDelete != nil {
		log.WithError(errDelete).Error("delete form schema failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete form schema failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
