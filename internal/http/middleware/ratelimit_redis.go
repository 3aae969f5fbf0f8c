package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes the shared Redis client used by the rate
// limiting middleware. With an empty addr, or when the ping fails, the client
// stays nil and all limiters act fail-open to keep the game available.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
	}
}

// RedisRateLimit is a fixed-window per-IP limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allow(c, key, int64(maxRequests), window, c.FullPath()) {
			return
		}
		c.Next()
	}
}

// FarmRateLimit limits farm operations per player rather than per IP.
// Requires the JWT middleware to have run first.
func FarmRateLimit(maxOps int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		idVal, exists := c.Get("player_id")
		playerID, ok := idVal.(string)
		if !exists || !ok || playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "farm_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allow(c, key, int64(maxOps), window, "farm:"+c.FullPath()) {
			return
		}
		c.Next()
	}
}

// allow runs one fixed-window check. Redis errors fail open since a degraded
// limiter must not take the game down with it.
func allow(c *gin.Context, key string, limit int64, window time.Duration, label string) bool {
	ctx := context.Background()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	if val > limit {
		RLBlocked.WithLabelValues(label).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return false
	}

	RLRequests.WithLabelValues(label).Inc()
	return true
}
