package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/gtd_shop/internal/auth"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{UserID: 3, Email: "ops@shop.test"}, nil
}

func TestCORSAllowsConfiguredHosts(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://shop.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://shop.example:443")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestJWTMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewJWTMiddleware(stubAuth{}).Handle(), func(c *gin.Context) {
		c.String(200, c.GetString(ContextAdminEmail))
	})

	cases := map[string]int{
		"":            http.StatusUnauthorized,
		"Token good":  http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer good": http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, header)
	}
}

func TestLoginRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewLoginRateLimiter(ctx, 2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.False(t, rl.Blocked("1.2.3.4"))
	rl.Fail("1.2.3.4")
	rl.Fail("1.2.3.4")
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.False(t, rl.Blocked("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.False(t, rl.Blocked("1.2.3.4"))

	rl.Fail("1.2.3.4")
	rl.Fail("1.2.3.4")
	rl.Reset("1.2.3.4")
	assert.False(t, rl.Blocked("1.2.3.4"))
}
