package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateCounter is the subset of redis.Cmdable used by the limiter.
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client RateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// HourlyRateLimit 按客户端 IP 限制每小时请求次数；limit <= 0 时不限流。
// Redis 不可用时放行，只记录日志。
func HourlyRateLimit(client RateCounter, scope string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || client == nil {
			c.Next()
			return
		}

		key := "rate:" + scope + ":" + c.ClientIP() + ":" + time.Now().UTC().Format("2006010215")
		count, err := incrWithTTL(c.Request.Context(), client, key, time.Hour)
		if err != nil {
			LoggerFromContext(c).Warn("rate limit counter unavailable", "error", err, "scope", scope)
			c.Next()
			return
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
