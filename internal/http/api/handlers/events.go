package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// EventHandler manages event CRUD. Reads of a single event are public so the
// registration page can render it; everything else requires authentication,
// and non-admins only reach their own events.
type EventHandler struct {
	storage *store.Storage
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(storage *store.Storage) *EventHandler {
	return &EventHandler{storage: storage}
}

// eventRequest defines the request body for creating an event.
type eventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	EventDate   string `json:"eventDate"`
	EventTime   string `json:"eventTime"`
}

// Create persists a new event owned by the authenticated user.
func (h *EventHandler) Create(c *gin.Context) {
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	event := models.Event{
		UserID:      MustUser(c).ID,
		Name:        name,
		Description: body.Description,
		EventDate:   body.EventDate,
		EventTime:   body.EventTime,
		IsActive:    true,
	}
	if errCreate := h.storage.CreateEvent(c.Request.Context(), &event); errCreate != nil {
		log.WithError(errCreate).Error("create event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create event failed"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Get returns a single event. Public: the registration form loads it without
// a session.
func (h *EventHandler) Get(c *gin.Context) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	event, errFind := h.storage.GetEvent(c.Request.Context(), id)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errFind).Error("get event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get event failed"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// List returns the caller's events; admins see all. Supports isActive and
// search filters.
func (h *EventHandler) List(c *gin.Context) {
	user := MustUser(c)
	filter := store.EventListFilter{Search: strings.TrimSpace(c.Query("search"))}
	if user.Role != models.RoleAdmin {
		filter.UserID = user.ID
	}
	if raw := c.Query("isActive"); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	rows, errList := h.storage.ListEvents(c.Request.Context(), filter)
	if errList != nil {
		log.WithError(errList).Error("list events failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list events failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// eventUpdateRequest defines the partial-update body; absent fields stay
// unchanged.
type eventUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	EventTime   *string `json:"eventTime"`
	IsActive    *bool   `json:"isActive"`
}

// Update applies a partial update after the ownership check.
func (h *EventHandler) Update(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var body eventUpdateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updated, errUpdate := h.storage.UpdateEvent(c.Request.Context(), event.ID, store.EventUpdate{
		Name:        body.Name,
		Description: body.Description,
		EventDate:   body.EventDate,
		EventTime:   body.EventTime,
		IsActive:    body.IsActive,
	})
	if errUpdate != nil {
		if errors.Is(errUpdate, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errUpdate).Error("update event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update event failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes an event and its dependents after the ownership check.
func (h *EventHandler) Delete(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	deleted, errDelete := h.storage.DeleteEvent(c.Request.Context(), event.ID)
	if errDelete != nil {
		log.WithError(errDelete).Error("delete event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete event failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedEvent loads the route's event and enforces owner-or-admin access. On
// failure the response is already written and ok is false.
func (h *EventHandler) ownedEvent(c *gin.Context) (*models.Event, bool) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	event, errFind := h.storage.GetEvent(c.Request.Context(), id)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		log.WithError(errFind).Error("get event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get event failed"})
		return nil, false
	}

	user := MustUser(c)
	if user.Role != models.RoleAdmin && event.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return event, true
}
