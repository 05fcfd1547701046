package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ExpertDevUX/QRFormv4/internal/auth"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UserHandler manages the admin user endpoints.
type UserHandler struct {
	storage *store.Storage
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(storage *store.Storage) *UserHandler {
	return &UserHandler{storage: storage}
}

// List returns sanitized users with optional filters.
func (h *UserHandler) List(c *gin.Context) {
	filter := store.UserListFilter{
		Username: strings.TrimSpace(c.Query("username")),
		Email:    strings.TrimSpace(c.Query("email")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	rows, errList := h.storage.ListUsers(c.Request.Context(), filter)
	if errList != nil {
		log.WithError(errList).Error("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]auth.SanitizedUser, 0, len(rows))
	for i := range rows {
		out = append(out, auth.Sanitize(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Ban marks a user banned. Admins cannot ban themselves.
func (h *UserHandler) Ban(c *gin.Context) {
	h.setBanned(c, true)
}

// Unban clears a user's banned flag. Admins cannot target themselves.
func (h *UserHandler) Unban(c *gin.Context) {
	h.setBanned(c, false)
}

// setBanned flips the banned flag with the self-action guard applied.
func (h *UserHandler) setBanned(c *gin.Context, banned bool) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if id == MustUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot modify own account"})
		return
	}

	user, errUpdate := h.storage.SetUserBanned(c.Request.Context(), id, banned)
	if errUpdate != nil {
		if errors.Is(errUpdate, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.WithError(errUpdate).Error("update user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, auth.Sanitize(user))
}

// Delete removes a user account. Admins cannot delete themselves.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c.Param("id"))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if id == MustUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot modify own account"})
		return
	}

	deleted, errDelete := h.storage.DeleteUser(c.Request.Context(), id)
	if errDelete != nil {
		log.WithError(errDelete).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID parses a decimal route parameter into an id.
func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
}
