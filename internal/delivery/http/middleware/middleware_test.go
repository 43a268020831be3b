package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/repository/memory"
	"diving-mate-backend/internal/usecase"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/security"
	"diving-mate-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret-with-enough-length-123456"

func init() {
	gin.SetMode(gin.TestMode)
}

func observedSecurityLogger() (*security.SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return security.NewSecurityLoggerWith(zap.New(core), "test", "test"), logs
}

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { response.Success(c, http.StatusOK, "ok", nil) })

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, decode(t, w).RequestID)
	})

	t.Run("echoes a well-formed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "trace-12345678")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "trace-12345678", w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Listing not found")) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "Listing not found", body.Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestAuthMiddleware(t *testing.T) {
	users := memory.NewUserRepository()
	authUC := usecase.NewAuthUsecase(users, validation.New())
	secLog, logs := observedSecurityLogger()

	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/me", AuthMiddleware(AuthConfig{JWTSecret: testSecret}, authUC, secLog), func(c *gin.Context) {
		response.Success(c, http.StatusOK, "ok", gin.H{
			"id":   c.GetString(string(domain.KeyUserID)),
			"role": c.GetString(string(domain.KeyUserRole)),
		})
	})

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Should create the user on first valid token", func(t *testing.T) {
		w := call(signHS256(t, jwt.MapClaims{
			"sub": "user-1", "email": "a@example.com", "exp": time.Now().Add(time.Hour).Unix(),
			"user_metadata": map[string]any{"role": "admin"},
		}))
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, "user-1", data["id"])
		assert.Equal(t, domain.RoleConsumer, data["role"])

		_, err := users.GetByID(context.Background(), "user-1")
		assert.NoError(t, err)
	})

	t.Run("Should take admin only from app_metadata", func(t *testing.T) {
		w := call(signHS256(t, jwt.MapClaims{
			"sub": "admin-1", "exp": time.Now().Add(time.Hour).Unix(),
			"app_metadata": map[string]any{"role": "admin"},
		}))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.RoleAdmin, decode(t, w).Data.(map[string]any)["role"])
	})

	t.Run("Should reject missing, expired and forged tokens", func(t *testing.T) {
		before := logs.Len()
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
		assert.Equal(t, http.StatusUnauthorized, call(signHS256(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()})).Code)
		assert.Equal(t, http.StatusUnauthorized, call(signHS256(t, jwt.MapClaims{"sub": "u"})).Code)

		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call(forged).Code)
		assert.Equal(t, 4, logs.Len()-before)
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(string(domain.KeyUserRole), c.Query("role"))
		c.Next()
	}, RequireRole(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=consumer", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_InMemory(t *testing.T) {
	secLog, logs := observedSecurityLogger()
	rl := NewRateLimiter(nil, secLog)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/", rl.Middleware(RateLimitConfig{Limit: 2, Window: time.Minute, KeyPrefix: "rl:test:"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	assert.Equal(t, http.StatusOK, hit().Code)
	w := hit()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, 1, logs.FilterMessage(string(security.EventRateLimitTriggered)).Len())

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, hit().Code)

	now = now.Add(2 * time.Minute)
	rl.Sweep()
	count := 0
	rl.memory.Range(func(_, _ interface{}) bool { count++; return true })
	assert.Zero(t, count)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://divingmate.app", true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://divingmate.app")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://divingmate.app", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("http://localhost:3000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/v1/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/v1/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/swagger/index.html", nil))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'unsafe-inline'")

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}
