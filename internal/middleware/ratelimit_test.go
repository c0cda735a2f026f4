package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront/internal/config"
)

func newLimiter(t *testing.T, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenBucket(cfg, client)
}

func hitLimiter(mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketExhaustion(t *testing.T) {
	mw := newLimiter(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	})

	for i := 0; i < 3; i++ {
		rec := hitLimiter(mw)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	rec := hitLimiter(mw)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over capacity: status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("remaining = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestTokenBucketHeaders(t *testing.T) {
	mw := newLimiter(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	})

	rec := hitLimiter(mw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "5" {
		t.Errorf("limit header = %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Errorf("remaining header = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	for i := 0; i < 10; i++ {
		if rec := hitLimiter(mw); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}
}

func TestTokenBucketRedisOutagePassesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mw := NewTokenBucket(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}, client)
	mr.Close() // limiter backend gone

	if rec := hitLimiter(mw); rec.Code != http.StatusOK {
		t.Errorf("status with dead redis = %d, want pass-through 200", rec.Code)
	}
}
