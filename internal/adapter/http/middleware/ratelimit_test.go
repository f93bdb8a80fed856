package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRateLimitRouter(limiter ports.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set(middleware.CtxUserID, u)
		}
		c.Next()
	})
	r.GET("/test", middleware.RateLimiter(limiter, "test", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	r.ServeHTTP(w, req)
	return w
}

func limiters(t *testing.T) map[string]ports.RateLimiter {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]ports.RateLimiter{
		"redis": redisStore.NewRateLimitStore(client),
		"local": middleware.NewLocalRateLimiter(),
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	for name, limiter := range limiters(t) {
		t.Run(name, func(t *testing.T) {
			router := setupRateLimitRouter(limiter)

			for i := 0; i < 3; i++ {
				w := doRequest(router, "")
				assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
				assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
				assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
				assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
			}

			w := doRequest(router, "")
			assert.Equal(t, 429, w.Code)
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), "RATE_001")
		})
	}
}

func TestRateLimiter_KeysByUser(t *testing.T) {
	for name, limiter := range limiters(t) {
		t.Run(name, func(t *testing.T) {
			router := setupRateLimitRouter(limiter)

			for i := 0; i < 3; i++ {
				assert.Equal(t, 200, doRequest(router, "alice").Code)
			}
			assert.Equal(t, 429, doRequest(router, "alice").Code)
			assert.Equal(t, 200, doRequest(router, "bob").Code)
		})
	}
}

func TestRateLimiter_DegradedModeAllows(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any(), 3, time.Minute).Return(nil, errors.New("redis down"))

	w := doRequest(setupRateLimitRouter(limiter), "")
	assert.Equal(t, 200, w.Code)
}

func TestLocalRateLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l := middleware.NewLocalRateLimiter()
	_, err := l.Allow(context.Background(), "k", 1, time.Second)
	assert.NoError(t, err)

	assert.Equal(t, 0, l.Sweep(time.Hour))
	assert.Equal(t, 1, l.Sweep(-time.Second))
}

func TestLocalRateLimiter_RejectsBadRule(t *testing.T) {
	_, err := middleware.NewLocalRateLimiter().Allow(context.Background(), "k", 0, time.Second)
	assert.Error(t, err)
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, 5, rules["users_register"].Limit)
	assert.Equal(t, 10, rules["users_login"].Limit)
	assert.Equal(t, 30, rules["wallet_write"].Limit)
	assert.Equal(t, 120, rules["wallet_read"].Limit)
}
