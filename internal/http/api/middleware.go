// Package api assembles the HTTP surface: the session-backed authorization
// middleware and the route table over the handler set.
package api

import (
	"errors"
	"net/http"

	"github.com/ExpertDevUX/QRFormv4/internal/http/api/handlers"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequireAuth gates a route on a valid session. The signed cookie is
// verified, the session loaded and the user fetched on every request, so a
// ban takes effect immediately: a banned user's session is destroyed and the
// cookie cleared in the same response.
func RequireAuth(storage *store.Storage, cookie handlers.CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := cookie.Read(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, errLoad := storage.LoadSession(c.Request.Context(), sessionID)
		if errLoad != nil {
			if errors.Is(errLoad, store.ErrNotFound) {
				cookie.Clear(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			log.WithError(errLoad).Error("load session failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		user, errFind := storage.GetUser(c.Request.Context(), userID)
		if errFind != nil {
			if errors.Is(errFind, store.ErrNotFound) {
				// The account vanished under a live session.
				cookie.Clear(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			log.WithError(errFind).Error("load user failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if user.Banned {
			if errDestroy := storage.DestroySession(c.Request.Context(), sessionID); errDestroy != nil {
				log.WithError(errDestroy).Warn("destroy banned session failed")
			}
			cookie.Clear(c)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("sessionID", sessionID)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlers.MustUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
