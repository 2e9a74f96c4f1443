package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counts[key]++
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	cmd := redis.NewBoolCmd(ctx, "expire", key, expiration)
	cmd.SetVal(true)
	return cmd
}

func newLimitedRouter(counter RateCounter, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/ai", HourlyRateLimit(counter, "ai", limit), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doPost(router http.Handler) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ai", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	router.ServeHTTP(w, req)
	return w.Code
}

func TestHourlyRateLimitRejectsAfterBudget(t *testing.T) {
	counter := newFakeCounter()
	router := newLimitedRouter(counter, 2)

	assert.Equal(t, http.StatusOK, doPost(router))
	assert.Equal(t, http.StatusOK, doPost(router))
	assert.Equal(t, http.StatusTooManyRequests, doPost(router))

	assert.Len(t, counter.expires, 1)
	for _, ttl := range counter.expires {
		assert.Equal(t, time.Hour, ttl)
	}
}

func TestHourlyRateLimitDisabled(t *testing.T) {
	counter := newFakeCounter()
	router := newLimitedRouter(counter, 0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doPost(router))
	}
	assert.Empty(t, counter.counts)

	assert.Equal(t, http.StatusOK, doPost(newLimitedRouter(nil, 3)))
}

func TestHourlyRateLimitFailsOpen(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")

	assert.Equal(t, http.StatusOK, doPost(newLimitedRouter(counter, 1)))
}
