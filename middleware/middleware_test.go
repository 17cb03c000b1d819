package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	model "github.com/nfredmond/project-manager/models"
	services "github.com/nfredmond/project-manager/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "user-1"})
	noSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{})
	wrongAlg := signToken(t, jwt.SigningMethodHS384, []byte(testSecret), jwt.RegisteredClaims{Subject: "user-1"})
	blankKey := signToken(t, jwt.SigningMethodHS256, []byte(""), jwt.RegisteredClaims{Subject: "intruder"})

	tests := []struct {
		name       string
		noSecret   bool
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubject, wantStatus: http.StatusUnauthorized},
		{name: "unexpected algorithm", header: "Bearer " + wrongAlg, wantStatus: http.StatusUnauthorized},
		{name: "blank key rejected", header: "Bearer " + blankKey, wantStatus: http.StatusUnauthorized},
		{
			name:       "secret not configured",
			noSecret:   true,
			header:     "Bearer " + blankKey,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Auth not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := testSecret
			if tt.noSecret {
				secret = ""
			}
			r := gin.New()
			r.GET("/me", Auth(secret), func(c *gin.Context) {
				c.String(http.StatusOK, UserID(c))
			})

			w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
				return
			}
			wantError := tt.wantError
			if wantError == "" {
				wantError = "Unauthorized"
			}
			assert.Contains(t, w.Body.String(), `"error":"`+wantError+`"`)
			assert.NotContains(t, w.Body.String(), "intruder")
		})
	}
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ActiveTenant(ctx context.Context, userID string) (*model.Tenant, model.TenantRole, error) {
	args := m.Called(ctx, userID)
	tenant, _ := args.Get(0).(*model.Tenant)
	return tenant, args.Get(1).(model.TenantRole), args.Error(2)
}

func TestActiveTenantAndPermissions(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *mockResolver)
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name: "resolves tenant",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(&model.Tenant{ID: "t1", Slug: "demo"}, model.RoleStaff, nil)
			},
			path:       "/read",
			wantStatus: http.StatusOK,
			wantBody:   "demo:staff",
		},
		{
			name: "no active tenant",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(nil, model.TenantRole(""), services.ErrTenantRequired)
			},
			path:       "/read",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Select a tenant first",
		},
		{
			name: "lookup failure",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(nil, model.TenantRole(""), errors.New("db down"))
			},
			path:       "/read",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "viewer cannot write",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(&model.Tenant{ID: "t1", Slug: "demo"}, model.RoleViewer, nil)
			},
			path:       "/write",
			wantStatus: http.StatusForbidden,
			wantBody:   "Insufficient permissions",
		},
		{
			name: "staff cannot invite",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(&model.Tenant{ID: "t1", Slug: "demo"}, model.RoleStaff, nil)
			},
			path:       "/invite",
			wantStatus: http.StatusForbidden,
		},
		{
			name: "manager can invite",
			setup: func(m *mockResolver) {
				m.On("ActiveTenant", mock.Anything, "user-1").Return(&model.Tenant{ID: "t1", Slug: "demo"}, model.RoleManager, nil)
			},
			path:       "/invite",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{}
			tt.setup(resolver)

			r := gin.New()
			group := r.Group("/", func(c *gin.Context) { c.Set(userIDKey, "user-1") }, ActiveTenant(resolver))
			handler := func(c *gin.Context) {
				c.String(http.StatusOK, Tenant(c).Slug+":"+string(Role(c)))
			}
			group.GET("/read", handler)
			group.GET("/write", RequirePermission(func(p services.RolePermissions) bool { return p.CanEditProjects }), handler)
			group.GET("/invite", RequirePermission(func(p services.RolePermissions) bool { return p.CanInviteMembers }), handler)

			w := perform(r, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			resolver.AssertExpectations(t)
		})
	}
}

func TestTenantAndRole_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, Tenant(c))
	assert.Equal(t, model.TenantRole(""), Role(c))
	assert.Empty(t, UserID(c))
}

func TestDigestToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{name: "matching token", configured: "cron-secret", header: "Bearer cron-secret", wantStatus: http.StatusOK},
		{name: "wrong token", configured: "cron-secret", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "missing header", configured: "cron-secret", wantStatus: http.StatusUnauthorized},
		{name: "not configured", configured: "", header: "Bearer ", wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/digest", DigestToken(tt.configured), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := perform(r, http.MethodPost, "/digest", map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", Limit(services.NewRateLimiter(2, time.Minute)), func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:5000"), "other clients are unaffected")
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantStatus int
		wantHeader string
	}{
		{name: "allowed origin", allowed: []string{"https://app.example.org"}, origin: "https://app.example.org", method: http.MethodGet, wantStatus: http.StatusOK, wantHeader: "https://app.example.org"},
		{name: "other origin", allowed: []string{"https://app.example.org"}, origin: "https://evil.example", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", method: http.MethodGet, wantStatus: http.StatusOK, wantHeader: "https://any.example"},
		{name: "empty list allows all", origin: "https://any.example", method: http.MethodGet, wantStatus: http.StatusOK, wantHeader: "https://any.example"},
		{name: "preflight", allowed: []string{"*"}, origin: "https://any.example", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantHeader: "https://any.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.allowed))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := perform(r, tt.method, "/", map[string]string{"Origin": tt.origin})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := services.NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(RequestLogger(zap.New(core), metrics))
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(r, http.MethodGet, "/api/projects/123", nil)
	perform(r, http.MethodGet, "/boom", nil)
	perform(r, http.MethodGet, "/nowhere", nil)

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "request", entries[0].Message)
		assert.Equal(t, "/api/projects/:id", entries[0].ContextMap()["route"])
		assert.Equal(t, "request failed", entries[1].Message)
		assert.Equal(t, "unmatched", entries[2].ContextMap()["route"])
	}
}
