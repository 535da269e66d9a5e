package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/time/rate"
)

var testSecret = []byte("middleware-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, time.Hour, models.User{ID: 9, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := utils.GetPrincipal(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", "", http.StatusUnauthorized},
		{"valid header", "Bearer " + token(t, models.RoleCustomer), "", http.StatusOK},
		{"valid query", "", "?token=" + token(t, models.RoleStaff), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := protectedRouter(models.RoleStaff, models.RoleAdmin)

	for role, want := range map[string]int{
		models.RoleCustomer: http.StatusForbidden,
		models.RoleStaff:    http.StatusOK,
		models.RoleAdmin:    http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, rl.allow("1.1.1.1"))

	// idle visitors are forgotten
	now = now.Add(limiterIdleTTL + time.Second)
	rl.allow("3.3.3.3")
	assert.NotContains(t, rl.ips, "2.2.2.2")
}

func TestRateLimiterSweepsOncePerInterval(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("1.1.1.1")
	rl.ips["9.9.9.9"] = &visitor{limiter: rate.NewLimiter(1, 2), lastSeen: now.Add(-2 * limiterIdleTTL)}

	now = now.Add(sweepInterval / 2)
	rl.allow("1.1.1.1")
	assert.Contains(t, rl.ips, "9.9.9.9")

	now = now.Add(sweepInterval / 2)
	rl.allow("1.1.1.1")
	assert.NotContains(t, rl.ips, "9.9.9.9")
	assert.Contains(t, rl.ips, "1.1.1.1")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(true), LoggerMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(utils.RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWithoutOriginsAllowsAny(t *testing.T) {
	r := gin.New()
	require.NotPanics(t, func() {
		r.Use(CORSMiddlewares(nil))
	})
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
