package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ExpertDevUX/QRFormv4/internal/security"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session identifier.
const SessionCookieName = "qrform_session"

// CookieConfig describes how session cookies are written and read.
type CookieConfig struct {
	Secret string // Secret for session token signing.
	MaxAge int    // Cookie lifetime in seconds, matching the session TTL.
	Secure bool   // Set the Secure attribute (TLS deployments).
}

// NewCookieConfig builds a CookieConfig. Secure is derived from the public
// base URL scheme.
func NewCookieConfig(secret string, maxAgeSeconds int, baseURL string) CookieConfig {
	return CookieConfig{
		Secret: secret,
		MaxAge: maxAgeSeconds,
		Secure: strings.HasPrefix(strings.ToLower(baseURL), "https://"),
	}
}

// Write sets the signed session cookie. HttpOnly and SameSite=Lax are always
// applied. The embedded token expiry mirrors the cookie lifetime.
func (cfg CookieConfig) Write(c *gin.Context, sessionID string) error {
	token, errSign := security.SignSessionToken(cfg.Secret, sessionID, time.Duration(cfg.MaxAge)*time.Second)
	if errSign != nil {
		return errSign
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, cfg.MaxAge, "/", "", cfg.Secure, true)
	return nil
}

// Clear removes the session cookie from the client.
func (cfg CookieConfig) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.Secure, true)
}

// Read extracts and verifies the signed session cookie. Returns the opaque
// session id, or false when the cookie is absent, unsigned or tampered.
func (cfg CookieConfig) Read(c *gin.Context) (string, bool) {
	signed, errCookie := c.Cookie(SessionCookieName)
	if errCookie != nil || signed == "" {
		return "", false
	}
	sessionID, errParse := security.ParseSessionToken(cfg.Secret, signed)
	if errParse != nil {
		return "", false
	}
	return sessionID, true
}
