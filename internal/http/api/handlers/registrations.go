package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// RegistrationHandler manages attendee registrations. These endpoints are
// public: attendees submit without an account.
type RegistrationHandler struct {
	storage *store.Storage
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(storage *store.Storage) *RegistrationHandler {
	return &RegistrationHandler{storage: storage}
}

// registrationRequest defines the submission body. CustomData carries
// whatever extra fields the event's form schema collects.
type registrationRequest struct {
	EventID    uint64          `json:"eventId"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Position   string          `json:"position"`
	Email      string          `json:"email"`
	CustomData json.RawMessage `json:"customData"`
}

// Create records an attendee submission for an existing event.
func (h *RegistrationHandler) Create(c *gin.Context) {
	var body registrationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	phone := strings.TrimSpace(body.Phone)
	if body.EventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return
	}
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	registration := models.Registration{
		EventID:    body.EventID,
		Name:       name,
		Phone:      phone,
		Position:   body.Position,
		Email:      body.Email,
		CustomData: datatypes.JSON(body.CustomData),
	}
	if errCreate := h.storage.CreateRegistration(c.Request.Context(), &registration); errCreate != nil {
		if errors.Is(errCreate, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		log.WithError(errCreate).Error("create registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create registration failed"})
		return
	}
	c.JSON(http.StatusCreated, registration)
}

// Get returns a registration by id.
func (h *RegistrationHandler) Get(c *gin.Context) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	registration, errFind := h.storage.GetRegistration(c.Request.Context(), id)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errFind).Error("get registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get registration failed"})
		return
	}
	c.JSON(http.StatusOK, registration)
}

// List returns registrations, newest first, optionally filtered by the
// eventId query parameter.
func (h *RegistrationHandler) List(c *gin.Context) {
	var eventID uint64
	if raw := c.Query("eventId"); raw != "" {
		parsed, errParse := parseID(raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
			return
		}
		eventID = parsed
	}

	rows, errList := h.storage.ListRegistrations(c.Request.Context(), eventID)
	if errList != nil {
		log.WithError(errList).Error("list registrations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list registrations failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// registrationUpdateRequest defines the partial-update body; absent fields
// stay unchanged.
type registrationUpdateRequest struct {
	Name       *string         `json:"name"`
	Phone      *string         `json:"phone"`
	Position   *string         `json:"position"`
	Email      *string         `json:"email"`
	CustomData json.RawMessage `json:"customData"`
}

// Update applies a partial update to a registration.
func (h *RegistrationHandler) Update(c *gin.Context) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body registrationUpdateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updated, errUpdate := h.storage.UpdateRegistration(c.Request.Context(), id, store.RegistrationUpdate{
		Name:       body.Name,
		Phone:      body.Phone,
		Position:   body.Position,
		Email:      body.Email,
		CustomData: []byte(body.CustomData),
	})
	if errUpdate != nil {
		if errors.Is(errUpdate, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errUpdate).Error("update registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update registration failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a registration.
func (h *RegistrationHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	deleted, errDelete := h.storage.DeleteRegistration(c.Request.Context(), id)
	if errDelete != nil {
		log.WithError(errDelete).Error("delete registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete registration failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
