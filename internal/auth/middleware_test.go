package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"astra/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	cfg.Server.TokenExpireMinutes = 30
	return cfg
}

// A client pointed at a closed port: every session lookup fails, which
// the middleware must treat as an invalid session.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "localhost:1", DialTimeout: 100 * time.Millisecond})
}

func protected(cfg *config.Config, rdb *redis.Client, requireAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(cfg, rdb, requireAdmin))
	r.GET("/test", func(c *gin.Context) {
		c.String(200, "OK")
	})
	return r
}

func TestMiddleware_MissingHeader(t *testing.T) {
	r := protected(testConfig(), unreachableRedis(), false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	r := protected(testConfig(), unreachableRedis(), false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid JWT, got %d", w.Code)
	}
}

func TestMiddleware_SessionUnavailable(t *testing.T) {
	cfg := testConfig()
	r := protected(cfg, unreachableRedis(), false)
	token, _ := GenerateJWT(cfg.Server.JWTSecret, 123, "user", false, time.Minute)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when session store unreachable, got %d", w.Code)
	}
}
