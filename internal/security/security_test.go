package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	credential, errHash := HashPassword("secret1")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if !strings.Contains(credential, ".") {
		t.Fatalf("expected delimited credential, got %q", credential)
	}

	ok, errVerify := VerifyPassword("secret1", credential)
	if errVerify != nil {
		t.Fatalf("verify password: %v", errVerify)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, errVerify = VerifyPassword("secret2", credential)
	if errVerify != nil {
		t.Fatalf("verify wrong password: %v", errVerify)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, errFirst := HashPassword("secret1")
	if errFirst != nil {
		t.Fatalf("hash password: %v", errFirst)
	}
	second, errSecond := HashPassword("secret1")
	if errSecond != nil {
		t.Fatalf("hash password: %v", errSecond)
	}
	if first == second {
		t.Fatalf("expected distinct credentials for the same password")
	}

	for _, credential := range []string{first, second} {
		ok, errVerify := VerifyPassword("secret1", credential)
		if errVerify != nil {
			t.Fatalf("verify password: %v", errVerify)
		}
		if !ok {
			t.Fatalf("expected credential %q to verify", credential)
		}
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"",
		"nodots",
		"zz.zz",
		"abcd.",
		".abcd",
		"abcd.1234",
	}
	for _, credential := range cases {
		_, errVerify := VerifyPassword("secret1", credential)
		if !errors.Is(errVerify, ErrMalformedCredential) {
			t.Fatalf("credential %q: expected ErrMalformedCredential, got %v", credential, errVerify)
		}
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	token, errSign := SignSessionToken("topsecret", "abc-123", time.Hour)
	if errSign != nil {
		t.Fatalf("sign session token: %v", errSign)
	}
	id, errParse := ParseSessionToken("topsecret", token)
	if errParse != nil {
		t.Fatalf("parse session token: %v", errParse)
	}
	if id != "abc-123" {
		t.Fatalf("expected id %q, got %q", "abc-123", id)
	}
}

func TestSessionToken_RejectsForgery(t *testing.T) {
	token, errSign := SignSessionToken("topsecret", "abc-123", time.Hour)
	if errSign != nil {
		t.Fatalf("sign session token: %v", errSign)
	}

	cases := map[string]struct {
		secret string
		token  string
	}{
		"wrong secret":    {secret: "othersecret", token: token},
		"tampered token":  {secret: "topsecret", token: token + "ff"},
		"not a token":     {secret: "topsecret", token: "no-signature"},
		"empty value":     {secret: "topsecret", token: ""},
		"unsigned header": {secret: "topsecret", token: "eyJhbGciOiJub25lIn0.eyJzdWIiOiJhYmMtMTIzIn0."},
	}
	for name, tc := range cases {
		if _, errParse := ParseSessionToken(tc.secret, tc.token); !errors.Is(errParse, ErrInvalidSessionToken) {
			t.Fatalf("%s: expected ErrInvalidSessionToken, got %v", name, errParse)
		}
	}
}

func TestSessionToken_RejectsExpired(t *testing.T) {
	token, errSign := SignSessionToken("topsecret", "abc-123", -time.Minute)
	if errSign != nil {
		t.Fatalf("sign session token: %v", errSign)
	}
	if _, errParse := ParseSessionToken("topsecret", token); !errors.Is(errParse, ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken for expired token, got %v", errParse)
	}
}

func TestGenerateRandomString(t *testing.T) {
	first, errFirst := GenerateRandomString(32)
	if errFirst != nil {
		t.Fatalf("generate random string: %v", errFirst)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	second, errSecond := GenerateRandomString(32)
	if errSecond != nil {
		t.Fatalf("generate random string: %v", errSecond)
	}
	if first == second {
		t.Fatalf("expected distinct random strings")
	}
}
