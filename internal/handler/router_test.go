package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db/memory"
	"github.com/sportevents/backend/internal/model"
	"github.com/sportevents/backend/internal/obs"
	"github.com/sportevents/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []model.ResetMessage
}

func (n *captureNotifier) NotifyPasswordReset(ctx context.Context, msg model.ResetMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *captureNotifier) last(t *testing.T) model.ResetMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.msgs)
	return n.msgs[len(n.msgs)-1]
}

// brokenUsers fails every email lookup with a non-domain error.
type brokenUsers struct {
	*memory.Store
}

func (brokenUsers) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, errors.New("connection reset by peer")
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error { return errors.New("down") }

type testServer struct {
	router   *gin.Engine
	notifier *captureNotifier
}

func testSettings() service.AuthSettings {
	return service.AuthSettings{
		AccessSecret:     []byte("access-secret"),
		RefreshSecret:    []byte("refresh-secret"),
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       24 * time.Hour,
		PasswordResetTTL: time.Hour,
		BcryptCost:       4,
	}
}

func newTestAuth(t *testing.T, repo service.AuthRepository, notifier service.ResetNotifier) *service.AuthService {
	t.Helper()
	auth, err := service.NewAuthService(repo, testSettings(), service.AuthOptions{
		FrontendURL: "http://app.test",
		Notifier:    notifier,
	})
	require.NoError(t, err)
	return auth
}

func newTestServer(t *testing.T, repo service.AuthRepository, production bool) *testServer {
	t.Helper()
	notifier := &captureNotifier{}
	auth := newTestAuth(t, repo, notifier)

	cfg := RouterConfig{Auth: auth, Production: production}
	if store, ok := repo.(*memory.Store); ok {
		cfg.Events = service.NewEventService(store)
		cfg.DB = store
	}
	return &testServer{router: NewRouter(cfg), notifier: notifier}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) register(t *testing.T, name, email, password string) model.AuthResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/registration", gin.H{"name": name, "email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.AuthResponse](t, w)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	reg := s.register(t, "A", "a@x.com", "secret1")
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	w := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[model.AuthResponse](t, w)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)

	w = s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	pair := decode[model.TokenPair](t, w)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	w = s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired refresh token", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodGet, "/api/protected", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	protected := decode[model.ProtectedResponse](t, w)
	assert.Equal(t, "Protected route", protected.Message)
	require.NotNil(t, protected.User)
	assert.Equal(t, reg.User.ID, protected.User.ID)

	w = s.do(t, http.MethodPost, "/api/auth/logout", gin.H{"refreshToken": pair.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refreshToken": pair.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	s.register(t, "A", "a@x.com", "secret1")

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"duplicate email", gin.H{"name": "B", "email": "a@x.com", "password": "secret2"}, "User already exists"},
		{"short password", gin.H{"name": "B", "email": "b@x.com", "password": "12345"}, "Password must be at least 6 characters"},
		{"password over 72 bytes", gin.H{"name": "B", "email": "b@x.com", "password": strings.Repeat("é", 40)}, "Password must be at most 72 bytes"},
		{"bad email", gin.H{"name": "B", "email": "nope", "password": "secret2"}, "Please provide a valid email"},
		{"missing name", gin.H{"email": "b@x.com", "password": "secret2"}, "Name is required"},
		{"malformed json", `{"name":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/auth/registration", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[model.ErrorResponse](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	s.register(t, "A", "a@x.com", "secret1")

	for _, body := range []gin.H{
		{"email": "a@x.com", "password": "wrong-pass"},
		{"email": "ghost@x.com", "password": "secret1"},
	} {
		w := s.do(t, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decode[model.ErrorResponse](t, w).Error.Message)
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	w := s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Refresh token is required", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refreshToken": "garbage"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	for _, body := range []any{gin.H{"refreshToken": "garbage"}, gin.H{}, "not json"} {
		w := s.do(t, http.MethodPost, "/api/auth/logout", body, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Logged out successfully", decode[model.MessageResponse](t, w).Message)
	}
}

func TestProtected_Unauthorized(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	w := s.do(t, http.MethodGet, "/api/protected", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodGet, "/api/protected", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decode[model.ErrorResponse](t, w).Error.Message)

	reg := s.register(t, "A", "a@x.com", "secret1")
	w = s.do(t, http.MethodGet, "/api/protected", nil, reg.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh token must not pass as access token")
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	reg := s.register(t, "A", "a@x.com", "secret1")

	w := s.do(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ghost@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	unknown := decode[model.MessageResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, unknown, decode[model.MessageResponse](t, w))

	msg := s.notifier.last(t)
	assert.Equal(t, "a@x.com", msg.To)
	assert.Contains(t, msg.URL, "http://app.test/reset-password?token=")

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{"token": msg.Token, "password": "newpass1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password has been reset successfully", decode[model.MessageResponse](t, w).Message)

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{"token": msg.Token, "password": "another1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "newpass1"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refreshToken": reg.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "sessions are revoked by a reset")
}

func TestResetPassword_InvalidToken(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	w := s.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{"token": "deadbeef", "password": "newpass1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{"password": "newpass1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Reset token is required", decode[model.ErrorResponse](t, w).Error.Message)
}

func TestResetPassword_PasswordOver72Bytes(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	s.register(t, "A", "a@x.com", "secret1")
	w := s.do(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := s.notifier.last(t).Token

	w = s.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{"token": token, "password": strings.Repeat("é", 40)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at most 72 bytes", decode[model.ErrorResponse](t, w).Error.Message)
}

func TestAuthMiddleware_Scheme(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	reg := s.register(t, "A", "a@x.com", "secret1")

	tests := []struct {
		header string
		status int
	}{
		{"Bearer " + reg.AccessToken, http.StatusOK},
		{"bearer " + reg.AccessToken, http.StatusOK},
		{"BEARER  " + reg.AccessToken, http.StatusOK},
		{"Basic " + reg.AccessToken, http.StatusUnauthorized},
		{"Bearer", http.StatusUnauthorized},
		{"Bearer   ", http.StatusUnauthorized},
		{reg.AccessToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", tt.header)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.header)
	}
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := obs.NewMetrics()
	router := NewRouter(RouterConfig{
		Auth:       newTestAuth(t, memory.New(), &captureNotifier{}),
		Metrics:    metrics,
		Logger:     zap.New(core),
		Production: true,
	})
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode[model.ErrorResponse](t, w).Error.Message)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/boom",status="500"} 1`)
}

func TestInternalErrorDetail(t *testing.T) {
	body := gin.H{"email": "a@x.com", "password": "secret1"}

	prod := newTestServer(t, brokenUsers{memory.New()}, true)
	w := prod.do(t, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode[model.ErrorResponse](t, w).Error.Message)

	dev := newTestServer(t, brokenUsers{memory.New()}, false)
	w = dev.do(t, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[model.ErrorResponse](t, w).Error.Message, "connection reset by peer")
}

func TestSportEventEndpoints(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	owner := s.register(t, "Owner", "owner@x.com", "secret1")
	other := s.register(t, "Other", "other@x.com", "secret1")

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	create := gin.H{
		"name":            "Evening match",
		"sport":           "Soccer",
		"maxParticipants": 10,
		"startTime":       start,
		"endTime":         start.Add(2 * time.Hour),
	}

	w := s.do(t, http.MethodPost, "/api/events", create, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/events", create, owner.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"participants":[]`)
	event := decode[model.SportEvent](t, w)
	assert.Equal(t, owner.User.ID, event.CreatedBy)

	w = s.do(t, http.MethodGet, "/api/events", nil, other.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.SportEvent](t, w), 1)

	path := "/api/events/" + event.ID.String()
	w = s.do(t, http.MethodPut, path, gin.H{"name": "Hijacked"}, other.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You are not authorized to update this event", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodPut, path, gin.H{"name": "Late match"}, owner.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Late match", decode[model.SportEvent](t, w).Name)

	w = s.do(t, http.MethodDelete, path, nil, other.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, nil, owner.AccessToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, path, nil, owner.AccessToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sport event not found", decode[model.ErrorResponse](t, w).Error.Message)

	w = s.do(t, http.MethodGet, "/api/events/"+uuid.NewString(), nil, owner.AccessToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/events/not-a-uuid", nil, owner.AccessToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid event ID", decode[model.ErrorResponse](t, w).Error.Message)
}

func TestCreateEvent_Validation(t *testing.T) {
	s := newTestServer(t, memory.New(), false)
	owner := s.register(t, "Owner", "owner@x.com", "secret1")
	start := time.Now().Add(time.Hour).UTC()

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{
			"unknown sport",
			gin.H{"name": "Match", "sport": "Chess", "maxParticipants": 10, "startTime": start, "endTime": start.Add(time.Hour)},
			"Sport must be one of: Soccer, Basketball, Tennis, Baseball, Volleyball",
		},
		{
			"too many participants",
			gin.H{"name": "Match", "sport": "Tennis", "maxParticipants": 101, "startTime": start, "endTime": start.Add(time.Hour)},
			"Maximum participants must be between 2 and 100",
		},
		{
			"end before start",
			gin.H{"name": "Match", "sport": "Tennis", "maxParticipants": 4, "startTime": start, "endTime": start.Add(-time.Hour)},
			"End time must be after start time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/events", tt.body, owner.AccessToken)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decode[model.ErrorResponse](t, w).Error.Message)
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, memory.New(), false)

	w := s.do(t, http.MethodGet, "/ping", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	ping := decode[model.PingResponse](t, w)
	assert.True(t, ping.OK)
	assert.NotEmpty(t, ping.TS)

	w = s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/openapi.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/api/auth/refresh")

	router := gin.New()
	router.GET("/healthz", Healthz(downPinger{}))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://app.test"}, true))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
