package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FormLimiter caps how often one visitor may submit a form. Counters live
// in Redis as fixed windows keyed "rl:<action>:<visitor>".
type FormLimiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewFormLimiter returns a limiter that is off in development and tests, and
// whenever Redis is not configured.
func NewFormLimiter(cfg *config.Config, rdb *redis.Client) *FormLimiter {
	enabled := rdb != nil && cfg.Env != "development" && !cfg.IsTest()
	return &FormLimiter{rdb: rdb, enabled: enabled}
}

// Allow counts one submission of action by visitor and reports whether it is
// within limit for the current window.
func (l *FormLimiter) Allow(ctx context.Context, action, visitor string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", action, visitor)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// Limit guards a form handler. Logged-in users are counted by id, guests by
// address. A Redis failure lets the submission through.
func (l *FormLimiter) Limit(action string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		visitor := "ip:" + c.IP()
		if uid := c.Locals(localsUserID); uid != nil {
			visitor = fmt.Sprintf("user:%v", uid)
		}

		allowed, err := l.Allow(c.UserContext(), action, visitor, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "form limiter unavailable",
				slog.String("action", action), slog.String("error", err.Error()))
			return c.Next()
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many submissions, try again later.")
		}
		return c.Next()
	}
}
