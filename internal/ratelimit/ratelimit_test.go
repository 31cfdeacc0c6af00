package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/aimerfeng/PawPals/internal/cache"
	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_NilLimiterPassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Middleware(nil))
	router.GET("/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/search", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func newTestLimiter(t *testing.T, limit int) *RateLimiter {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	r, err := cache.NewRedis(context.Background(), url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return New(r, &config.RateLimitConfig{Enabled: true, Limit: limit, WindowSeconds: 60})
}

func TestCheck_SlidingWindow(t *testing.T) {
	limiter := newTestLimiter(t, 3)
	ctx := context.Background()
	client := "test:" + uuid.NewString()
	defer limiter.Reset(ctx, client)

	for i := 0; i < 3; i++ {
		res, err := limiter.Check(ctx, client)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Remaining != int64(2-i) {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 2-i, res.Remaining)
		}
	}

	res, err := limiter.Check(ctx, client)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Allowed {
		t.Fatal("fourth request should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %s", res.RetryAfter)
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	limiter := newTestLimiter(t, 1)

	router := gin.New()
	router.Use(Middleware(limiter))
	router.GET("/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	ip := "198.51.100.7"
	limiter.Reset(context.Background(), "ip:"+ip)
	defer limiter.Reset(context.Background(), "ip:"+ip)

	var codes []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/search", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [200 429], got %v", codes)
	}
}
