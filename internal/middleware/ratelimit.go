package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// checkRateLimit checks if a caller has exceeded its rate limit using a
// fixed-window counter in redis. Fails open when redis is absent or errors,
// so the API keeps serving without it.
func checkRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns an Echo middleware enforcing limit requests per window,
// keyed by the authenticated Firebase UID when present, otherwise by client IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if uid, ok := c.Get("firebaseUID").(string); ok && uid != "" {
				id = "user:" + uid
			} else {
				id = "ip:" + c.RealIP()
			}

			allowed, err := checkRateLimit(c.Request().Context(), rdb, c.Path(), id, limit, window)
			if err != nil {
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}
