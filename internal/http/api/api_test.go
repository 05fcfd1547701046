package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ExpertDevUX/QRFormv4/internal/auth"
	"github.com/ExpertDevUX/QRFormv4/internal/db"
	"github.com/ExpertDevUX/QRFormv4/internal/http/api/handlers"
	"github.com/ExpertDevUX/QRFormv4/internal/models"
	"github.com/ExpertDevUX/QRFormv4/internal/security"
	"github.com/ExpertDevUX/QRFormv4/internal/store"
	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

type testEnv struct {
	engine  *gin.Engine
	storage *store.Storage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if errOpen != nil {
		t.Fatalf("open database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate database: %v", errMigrate)
	}

	storage := store.New(conn, "http://localhost:5000")
	service := auth.NewService(storage)
	cookie := handlers.NewCookieConfig(testSecret, 86400, "http://localhost:5000")
	return &testEnv{
		engine:  NewRouter(storage, service, cookie, nil),
		storage: storage,
	}
}

// do sends a request with an optional JSON body and session cookie.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the session cookie set by a response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// register creates an account through the API and returns its session cookie.
func (e *testEnv) register(t *testing.T, username, email, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/register", gin.H{
		"username": username, "email": email, "password": password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

// seedAdmin inserts an admin account directly and logs it in.
func (e *testEnv) seedAdmin(t *testing.T) (*models.User, *http.Cookie) {
	t.Helper()
	hash, errHash := security.HashPassword("adminpass1")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	admin := models.User{Username: "root", Email: "root@example.com", Password: hash, Role: models.RoleAdmin}
	if errCreate := e.storage.CreateUser(context.Background(), &admin); errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}
	rec := e.do(t, http.MethodPost, "/api/login", gin.H{"username": "root", "password": "adminpass1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: status %d, body %s", rec.Code, rec.Body.String())
	}
	return &admin, sessionCookie(t, rec)
}

func TestRegisterLoginEventStatsFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", gin.H{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("register response leaks password: %s", rec.Body.String())
	}
	registerCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "secret1"}, registerCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	loginCookie := sessionCookie(t, rec)
	if loginCookie.Value == registerCookie.Value {
		t.Fatal("expected a fresh session cookie after login")
	}

	rec = env.do(t, http.MethodPost, "/api/events", gin.H{"name": "Spring Fair"}, loginCookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: status %d, body %s", rec.Code, rec.Body.String())
	}
	var event models.Event
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &event); errDecode != nil {
		t.Fatalf("decode event: %v", errDecode)
	}
	if event.RegistrationURL == "" || !strings.Contains(event.RegistrationURL, fmt.Sprintf("/register/%d", event.ID)) {
		t.Fatalf("unexpected registration url: %q", event.RegistrationURL)
	}

	rec = env.do(t, http.MethodGet, "/api/stats", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d", rec.Code)
	}
	var stats store.Stats
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &stats); errDecode != nil {
		t.Fatalf("decode stats: %v", errDecode)
	}
	if stats.TotalEvents < 1 {
		t.Fatalf("expected totalEvents >= 1, got %d", stats.TotalEvents)
	}
}

func TestRegisterIgnoresRoleField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", gin.H{
		"username": "mallory", "email": "m@x.com", "password": "secret1", "role": "admin", "banned": false,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodGet, "/api/user", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("current user: status %d", rec.Code)
	}
	var user auth.SanitizedUser
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &user); errDecode != nil {
		t.Fatalf("decode user: %v", errDecode)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected role %q, got %q", models.RoleUser, user.Role)
	}
}

func TestRequireAuthRejectsMissingAndTamperedCookies(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/user", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status %d", rec.Code)
	}

	cookie := env.register(t, "alice", "alice@x.com", "secret1")
	tampered := &http.Cookie{Name: cookie.Name, Value: cookie.Value + "ff"}
	rec = env.do(t, http.MethodGet, "/api/user", nil, tampered)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered cookie: status %d", rec.Code)
	}
}

func TestLoginFailuresShareOneShape(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@x.com", "secret1")

	unknown := env.do(t, http.MethodPost, "/api/login", gin.H{"username": "nobody", "password": "secret1"}, nil)
	wrong := env.do(t, http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "wrong-pass"}, nil)
	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("statuses: unknown=%d wrong=%d", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("failure bodies differ: %s vs %s", unknown.Body.String(), wrong.Body.String())
	}
}

func TestBanTakesEffectOnLiveSession(t *testing.T) {
	env := newTestEnv(t)
	userCookie := env.register(t, "alice", "alice@x.com", "secret1")
	_, adminCookie := env.seedAdmin(t)

	var target auth.SanitizedUser
	rec := env.do(t, http.MethodGet, "/api/user", nil, userCookie)
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &target); errDecode != nil {
		t.Fatalf("decode user: %v", errDecode)
	}

	rec = env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/ban", target.ID), nil, adminCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("ban: status %d, body %s", rec.Code, rec.Body.String())
	}

	// The banned user's existing session stops working on the next request.
	rec = env.do(t, http.MethodGet, "/api/user", nil, userCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("banned session: status %d", rec.Code)
	}
	// And the session was destroyed, not just rejected.
	rec = env.do(t, http.MethodGet, "/api/user", nil, userCookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("destroyed session: status %d", rec.Code)
	}

	// A banned account cannot log back in.
	rec = env.do(t, http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "secret1"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("banned login: status %d", rec.Code)
	}

	// Unban restores access.
	rec = env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/unban", target.ID), nil, adminCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("unban: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "secret1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login after unban: status %d", rec.Code)
	}
}

func TestAdminCannotTargetSelf(t *testing.T) {
	env := newTestEnv(t)
	admin, adminCookie := env.seedAdmin(t)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/ban", admin.ID), nil, adminCookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self ban: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil, adminCookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self delete: status %d", rec.Code)
	}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	userCookie := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodGet, "/api/users", nil, userCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user list as non-admin: status %d", rec.Code)
	}
}

func TestEventOwnership(t *testing.T) {
	env := newTestEnv(t)
	aliceCookie := env.register(t, "alice", "alice@x.com", "secret1")
	bobCookie := env.register(t, "bob", "bob@x.com", "secret1")
	_, adminCookie := env.seedAdmin(t)

	rec := env.do(t, http.MethodPost, "/api/events", gin.H{"name": "Spring Fair"}, aliceCookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: status %d", rec.Code)
	}
	var event models.Event
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &event); errDecode != nil {
		t.Fatalf("decode event: %v", errDecode)
	}

	path := fmt.Sprintf("/api/events/%d", event.ID)

	// Reading a single event needs no session.
	rec = env.do(t, http.MethodGet, path, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public get: status %d", rec.Code)
	}

	// Another user cannot mutate it; an admin can.
	rec = env.do(t, http.MethodPatch, path, gin.H{"name": "Hijacked"}, bobCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, path, gin.H{"isActive": false}, adminCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update: status %d, body %s", rec.Code, rec.Body.String())
	}

	// Bob's event list does not contain Alice's event.
	rec = env.do(t, http.MethodGet, "/api/events", nil, bobCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("bob list: status %d", rec.Code)
	}
	var events []models.Event
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &events); errDecode != nil {
		t.Fatalf("decode events: %v", errDecode)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty list for bob, got %d", len(events))
	}
}

func TestRegistrationsArePublic(t *testing.T) {
	env := newTestEnv(t)
	aliceCookie := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/events", gin.H{"name": "Spring Fair"}, aliceCookie)
	var event models.Event
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &event); errDecode != nil {
		t.Fatalf("decode event: %v", errDecode)
	}

	rec = env.do(t, http.MethodPost, "/api/registrations", gin.H{
		"eventId": event.ID, "name": "Bob", "phone": "123",
		"customData": gin.H{"tshirt": "L"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create registration: status %d, body %s", rec.Code, rec.Body.String())
	}

	// Unknown event is rejected.
	rec = env.do(t, http.MethodPost, "/api/registrations", gin.H{
		"eventId": event.ID + 100, "name": "Bob", "phone": "123",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("registration for unknown event: status %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/registrations?eventId=%d", event.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list registrations: status %d", rec.Code)
	}
	var rows []models.Registration
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &rows); errDecode != nil {
		t.Fatalf("decode registrations: %v", errDecode)
	}
	if len(rows) != 1 || rows[0].Name != "Bob" {
		t.Fatalf("unexpected registrations: %d rows", len(rows))
	}
}

func TestQrSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/events", gin.H{"name": "Spring Fair"}, cookie)
	var event models.Event
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &event); errDecode != nil {
		t.Fatalf("decode event: %v", errDecode)
	}

	rec = env.do(t, http.MethodPost, "/api/qr-settings", gin.H{
		"eventId": event.ID, "data": gin.H{"color": "black", "size": 256},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert qr settings: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/qr-settings/%d", event.ID), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get qr settings: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "black") {
		t.Fatalf("stored settings missing: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/qr-settings/%d", event.ID), nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete qr settings: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/qr-settings/%d", event.ID), nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/user", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session after logout: status %d", rec.Code)
	}
	// Logging out again without a session still succeeds.
	rec = env.do(t, http.MethodPost, "/api/logout", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second logout: status %d", rec.Code)
	}
}

func TestResponsesUseCamelCaseKeys(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/events", gin.H{"name": "Spring Fair"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: status %d, body %s", rec.Code, rec.Body.String())
	}
	var event map[string]json.RawMessage
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &event); errDecode != nil {
		t.Fatalf("decode event: %v", errDecode)
	}
	for _, key := range []string{"id", "userId", "name", "registrationUrl", "qrCodeUrl", "isActive", "createdAt"} {
		if _, ok := event[key]; !ok {
			t.Fatalf("event response missing %q: %s", key, rec.Body.String())
		}
	}
	for _, key := range []string{"RegistrationURL", "IsActive", "User", "Registrations"} {
		if _, ok := event[key]; ok {
			t.Fatalf("event response leaks %q: %s", key, rec.Body.String())
		}
	}

	rec = env.do(t, http.MethodPost, "/api/registrations", gin.H{
		"eventId": 1, "name": "Bob", "phone": "555-0100",
		"customData": gin.H{"shirt": "L"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create registration: status %d, body %s", rec.Code, rec.Body.String())
	}
	var registration map[string]json.RawMessage
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &registration); errDecode != nil {
		t.Fatalf("decode registration: %v", errDecode)
	}
	for _, key := range []string{"id", "eventId", "customData", "registeredAt"} {
		if _, ok := registration[key]; !ok {
			t.Fatalf("registration response missing %q: %s", key, rec.Body.String())
		}
	}
	if _, ok := registration["Event"]; ok {
		t.Fatalf("registration response leaks %q: %s", "Event", rec.Body.String())
	}
}

func TestExportCounter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/export", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	var body map[string]int64
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode export: %v", errDecode)
	}
	if body["exportCount"] != 1 {
		t.Fatalf("expected exportCount 1, got %d", body["exportCount"])
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rec.Code)
	}
}
