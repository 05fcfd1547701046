package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Changing these invalidates stored credentials.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// ErrMalformedCredential indicates a stored credential that cannot be parsed.
var ErrMalformedCredential = errors.New("security: malformed credential")

// ErrInvalidSessionToken indicates a session token that failed verification.
var ErrInvalidSessionToken = errors.New("security: invalid session token")

// HashPassword derives a scrypt hash with a fresh random salt and returns
// "hex(key).hex(salt)".
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, errRead := rand.Read(salt); errRead != nil {
		return "", fmt.Errorf("security: read salt: %w", errRead)
	}
	key, errDerive := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if errDerive != nil {
		return "", fmt.Errorf("security: derive key: %w", errDerive)
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword re-derives the key from the stored salt and compares in
// constant time. A mismatch is a normal false result, not an error.
func VerifyPassword(plaintext, credential string) (bool, error) {
	stored, salt, errParse := parseCredential(credential)
	if errParse != nil {
		return false, errParse
	}
	derived, errDerive := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if errDerive != nil {
		return false, fmt.Errorf("security: derive key: %w", errDerive)
	}
	return subtle.ConstantTimeCompare(stored, derived) == 1, nil
}

// parseCredential splits a "hex(key).hex(salt)" credential string.
func parseCredential(credential string) ([]byte, []byte, error) {
	parts := strings.Split(credential, ".")
	if len(parts) != 2 {
		return nil, nil, ErrMalformedCredential
	}
	key, errKey := hex.DecodeString(parts[0])
	if errKey != nil || len(key) != scryptKeyLen {
		return nil, nil, ErrMalformedCredential
	}
	salt, errSalt := hex.DecodeString(parts[1])
	if errSalt != nil || len(salt) == 0 {
		return nil, nil, ErrMalformedCredential
	}
	return key, salt, nil
}

// SignSessionToken wraps the opaque session id in a signed HS256 token for
// cookie transport. The token carries no authority on its own: the id inside
// is still resolved against the session table on every request.
func SignSessionToken(secret, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign session token: %w", errSign)
	}
	return signed, nil
}

// ParseSessionToken verifies a session token and returns the embedded session
// id. Only HS256 signatures are accepted.
func ParseSessionToken(secret, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errParse != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSessionToken, errParse)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.Subject, nil
}

// GenerateRandomString returns a hex string of n random bytes.
func GenerateRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, errRead := rand.Read(buf); errRead != nil {
		return "", fmt.Errorf("security: read random: %w", errRead)
	}
	return hex.EncodeToString(buf), nil
}
