package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter caps requests per client IP using a Redis fixed window.
// Fails open: a Redis hiccup must not take the API down with it.
func RateLimiter(rdb *redis.Client, maxPerMinute int, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), time.Now().Format("200601021504"))

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, time.Minute)
		}
		if count > int64(maxPerMinute) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições; tente novamente em instantes"))
			return
		}
		c.Next()
	}
}
