package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInvalidAuthRateLimiter(t *testing.T) {
	rl := NewInvalidAuthRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.1.1.1"))
	rl.Fail("1.1.1.1")
	assert.True(t, rl.Allow("1.1.1.1"))
	rl.Fail("1.1.1.1")
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	rl.Reset("1.1.1.1")
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestJWTMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewJWTMiddleware("secret").Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("email"))
	})

	token, err := utils.GenerateJWT("secret", 3, "ops@bookstore.vn", time.Hour)
	require.NoError(t, err)

	tests := map[string]struct {
		header string
		want   int
	}{
		"missing":    {"", http.StatusUnauthorized},
		"bad scheme": {"Token " + token, http.StatusUnauthorized},
		"bad token":  {"Bearer nope", http.StatusUnauthorized},
		"valid":      {"Bearer " + token, http.StatusOK},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("shop.bookstore.vn"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://shop.bookstore.vn")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.bookstore.vn", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		utils.Success(c, http.StatusOK, "pong", nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "upstream-7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-7", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, rec.Body.String(), `"requestId":"upstream-7"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := rec.Header().Get("X-Request-Id")
	assert.Len(t, generated, 8)
	assert.Contains(t, rec.Body.String(), `"requestId":"`+generated+`"`)
}
