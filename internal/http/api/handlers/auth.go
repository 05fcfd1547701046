package handlers

import (
	"errors"
	"net/http"

	"github.com/ExpertDevUX/QRFormv4/internal/auth"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/ratelimit"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AuthHandler manages registration, login, logout and the current-user
// endpoint.
type AuthHandler struct {
	service  *auth.Service
	cookie   CookieConfig
	throttle *ratelimit.Manager
}

// NewAuthHandler constructs an AuthHandler. A nil throttle disables the
// attempt limiter.
func NewAuthHandler(service *auth.Service, cookie CookieConfig, throttle *ratelimit.Manager) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie, throttle: throttle}
}

// allowAttempt consults the credential throttle. On rejection the response
// is already written and false is returned.
func (h *AuthHandler) allowAttempt(c *gin.Context, username string) bool {
	if h.throttle == nil {
		return true
	}
	result, errAllow := h.throttle.Allow(c.Request.Context(), ratelimit.LoginKey(c.ClientIP(), username))
	if errAllow != nil {
		log.WithError(errAllow).Warn("rate limit check failed")
		return true
	}
	if !result.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		return false
	}
	return true
}

// registerRequest defines the request body for registration. Role and banned
// are deliberately absent: client-supplied values are never honored.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and issues a fresh session cookie.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !h.allowAttempt(c, body.Username) {
		return
	}

	oldSessionID, _ := h.cookie.Read(c)
	user, sessionID, errRegister := h.service.Register(c.Request.Context(), body.Username, body.Email, body.Password, oldSessionID)
	if errRegister != nil {
		var validation *auth.ValidationError
		switch {
		case errors.As(errRegister, &validation):
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		case errors.Is(errRegister, store.ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
		case errors.Is(errRegister, store.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already exists"})
		default:
			log.WithError(errRegister).Error("register failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	if errCookie := h.cookie.Write(c, sessionID); errCookie != nil {
		log.WithError(errCookie).Error("issue session cookie failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a fresh session cookie. All failure
// modes share one response shape.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !h.allowAttempt(c, body.Username) {
		return
	}

	oldSessionID, _ := h.cookie.Read(c)
	user, sessionID, errLogin := h.service.Login(c.Request.Context(), body.Username, body.Password, oldSessionID)
	if errLogin != nil {
		if errors.Is(errLogin, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.WithError(errLogin).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if errCookie := h.cookie.Write(c, sessionID); errCookie != nil {
		log.WithError(errCookie).Error("issue session cookie failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout destroys the session and clears the cookie. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, ok := h.cookie.Read(c); ok {
		if errLogout := h.service.Logout(c.Request.Context(), sessionID); errLogout != nil {
			log.WithError(errLogout).Warn("logout: destroy session failed")
		}
	}
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CurrentUser returns the sanitized view of the authenticated user.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := MustUser(c)
	c.JSON(http.StatusOK, auth.Sanitize(user))
}

// MustUser returns the user loaded by the auth middleware. Only valid on
// gated routes.
func MustUser(c *gin.Context) *models.User {
	value, _ := c.Get("user")
	user, _ := value.(*models.User)
	return user
}
