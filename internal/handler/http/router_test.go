package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHandlers answers every route with 200 and the handler name.
type stubHandlers struct{}

func (stubHandlers) ok(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	}
}

func (s stubHandlers) Signup(w http.ResponseWriter, r *http.Request)    { s.ok("Signup")(w, r) }
func (s stubHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) { s.ok("VerifyOTP")(w, r) }
func (s stubHandlers) ResendOTP(w http.ResponseWriter, r *http.Request) { s.ok("ResendOTP")(w, r) }
func (s stubHandlers) Login(w http.ResponseWriter, r *http.Request)     { s.ok("Login")(w, r) }
func (s stubHandlers) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	s.ok("LoginWithGoogle")(w, r)
}
func (s stubHandlers) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	s.ok("OAuthCallbackGoogle")(w, r)
}
func (s stubHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) { s.ok("RefreshToken")(w, r) }
func (s stubHandlers) Logout(w http.ResponseWriter, r *http.Request)       { s.ok("Logout")(w, r) }
func (s stubHandlers) Me(w http.ResponseWriter, r *http.Request)           { s.ok("Me")(w, r) }

func (s stubHandlers) GetSocketToken(w http.ResponseWriter, r *http.Request) {
	s.ok("GetSocketToken")(w, r)
}
func (s stubHandlers) WebSocket(w http.ResponseWriter, r *http.Request) { s.ok("WebSocket")(w, r) }
func (s stubHandlers) Stream(w http.ResponseWriter, r *http.Request)    { s.ok("Stream")(w, r) }

func (s stubHandlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	s.ok("ListEmployees")(w, r)
}
func (s stubHandlers) ApproveEmployee(w http.ResponseWriter, r *http.Request) {
	s.ok("ApproveEmployee")(w, r)
}
func (s stubHandlers) RejectEmployee(w http.ResponseWriter, r *http.Request) {
	s.ok("RejectEmployee")(w, r)
}

func (s stubHandlers) ClockIn(w http.ResponseWriter, r *http.Request)  { s.ok("ClockIn")(w, r) }
func (s stubHandlers) ClockOut(w http.ResponseWriter, r *http.Request) { s.ok("ClockOut")(w, r) }
func (s stubHandlers) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	s.ok("GetMyAttendance")(w, r)
}
func (s stubHandlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
	s.ok("ListAttendance")(w, r)
}
func (s stubHandlers) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	s.ok("CreateAttendance")(w, r)
}
func (s stubHandlers) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	s.ok("DeleteAttendance")(w, r)
}

func (s stubHandlers) GetSettings(w http.ResponseWriter, r *http.Request) { s.ok("GetSettings")(w, r) }
func (s stubHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	s.ok("UpdateSettings")(w, r)
}
func (s stubHandlers) GetSummary(w http.ResponseWriter, r *http.Request)   { s.ok("GetSummary")(w, r) }
func (s stubHandlers) ExportReport(w http.ResponseWriter, r *http.Request) { s.ok("ExportReport")(w, r) }

func (s stubHandlers) ListTasks(w http.ResponseWriter, r *http.Request)  { s.ok("ListTasks")(w, r) }
func (s stubHandlers) GetTask(w http.ResponseWriter, r *http.Request)    { s.ok("GetTask")(w, r) }
func (s stubHandlers) CreateTask(w http.ResponseWriter, r *http.Request) { s.ok("CreateTask")(w, r) }
func (s stubHandlers) UpdateTask(w http.ResponseWriter, r *http.Request) { s.ok("UpdateTask")(w, r) }
func (s stubHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) { s.ok("DeleteTask")(w, r) }

func (s stubHandlers) ListEvents(w http.ResponseWriter, r *http.Request)  { s.ok("ListEvents")(w, r) }
func (s stubHandlers) GetEvent(w http.ResponseWriter, r *http.Request)    { s.ok("GetEvent")(w, r) }
func (s stubHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) { s.ok("CreateEvent")(w, r) }
func (s stubHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) { s.ok("UpdateEvent")(w, r) }
func (s stubHandlers) DeleteEvent(w http.ResponseWriter, r *http.Request) { s.ok("DeleteEvent")(w, r) }

func newTestRouter(t *testing.T, cfg RouterConfig) (http.Handler, *jwt.JWTService) {
	t.Helper()
	jwtService, err := jwt.NewJWTService("test-secret", "15m", "24h", false)
	require.NoError(t, err)

	s := stubHandlers{}
	router := NewRouter(cfg, jwtService, Handlers{
		Auth:         s,
		Notification: s,
		Employee:     s,
		Attendance:   s,
		Payroll:      s,
		Task:         s,
		Event:        s,
	})
	return router, jwtService
}

func accessToken(t *testing.T, svc *jwt.JWTService, role user.Role, status user.Status) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken("u-1", "u1@example.com", role, status)
	require.NoError(t, err)
	return token
}

func TestRouter_Access(t *testing.T) {
	router, jwtService := newTestRouter(t, RouterConfig{AllowedOrigins: []string{"http://app.test"}})

	admin := accessToken(t, jwtService, user.RoleAdmin, user.StatusApproved)
	approved := accessToken(t, jwtService, user.RoleEmployee, user.StatusApproved)
	pending := accessToken(t, jwtService, user.RoleEmployee, user.StatusPending)
	refresh, _, err := jwtService.GenerateRefreshToken("u-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
		body   string
	}{
		{"public signup", http.MethodPost, "/api/v1/auth/signup", "", http.StatusOK, "Signup"},
		{"me needs token", http.MethodGet, "/api/v1/auth/me", "", http.StatusUnauthorized, ""},
		{"refresh token is not an access token", http.MethodGet, "/api/v1/auth/me", refresh, http.StatusUnauthorized, ""},
		{"pending may read profile", http.MethodGet, "/api/v1/auth/me", pending, http.StatusOK, "Me"},
		{"pending may get socket token", http.MethodGet, "/api/v1/notifications/token", pending, http.StatusOK, "GetSocketToken"},
		{"socket auth is the handler's job", http.MethodGet, "/api/v1/notifications/ws", "", http.StatusOK, "WebSocket"},
		{"pending kept out of tasks", http.MethodGet, "/api/v1/tasks", pending, http.StatusForbidden, ""},
		{"approved lists tasks", http.MethodGet, "/api/v1/tasks", approved, http.StatusOK, "ListTasks"},
		{"approved updates task", http.MethodPut, "/api/v1/tasks/t-1", approved, http.StatusOK, "UpdateTask"},
		{"approved cannot create task", http.MethodPost, "/api/v1/tasks", approved, http.StatusForbidden, ""},
		{"admin creates task", http.MethodPost, "/api/v1/tasks", admin, http.StatusOK, "CreateTask"},
		{"approved clocks in", http.MethodPost, "/api/v1/attendance/clock-in", approved, http.StatusOK, "ClockIn"},
		{"approved cannot list all attendance", http.MethodGet, "/api/v1/attendance", approved, http.StatusForbidden, ""},
		{"admin deletes attendance", http.MethodDelete, "/api/v1/attendance/a-1", admin, http.StatusOK, "DeleteAttendance"},
		{"employee reads own summary", http.MethodGet, "/api/v1/payroll/summary", approved, http.StatusOK, "GetSummary"},
		{"employee cannot change settings", http.MethodPut, "/api/v1/payroll/settings", approved, http.StatusForbidden, ""},
		{"admin changes settings", http.MethodPut, "/api/v1/payroll/settings", admin, http.StatusOK, "UpdateSettings"},
		{"employee creates event", http.MethodPost, "/api/v1/events", approved, http.StatusOK, "CreateEvent"},
		{"employee cannot list employees", http.MethodGet, "/api/v1/employees", approved, http.StatusForbidden, ""},
		{"admin approves employee", http.MethodPost, "/api/v1/employees/e-1/approve", admin, http.StatusOK, "ApproveEmployee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, RouterConfig{AuthRateLimit: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients are unaffected
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.8:5555"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	var redisErr error
	router, _ := newTestRouter(t, RouterConfig{HealthChecks: map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return redisErr },
	}})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/").Code)

	rec := get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", decodeEnvelope(t, rec)["data"].(map[string]interface{})["redis"])

	redisErr = errors.New("connection refused")
	rec = get("/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "down", decodeEnvelope(t, rec)["data"].(map[string]interface{})["redis"])
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
