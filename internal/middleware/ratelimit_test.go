package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestFormLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("off in test and development", func(t *testing.T) {
		_, rdb := newMiniRedis(t)
		for _, env := range []string{"test", "development"} {
			l := NewFormLimiter(&config.Config{Env: env}, rdb)
			for i := 0; i < 3; i++ {
				allowed, err := l.Allow(ctx, "login", "ip:1", 1, time.Minute)
				require.NoError(t, err)
				assert.True(t, allowed)
			}
		}
	})

	t.Run("off without redis", func(t *testing.T) {
		l := NewFormLimiter(&config.Config{Env: "production"}, nil)
		allowed, err := l.Allow(ctx, "login", "ip:1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("fixed window", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewFormLimiter(&config.Config{Env: "production"}, rdb)

		for i := 0; i < 2; i++ {
			allowed, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := l.Allow(ctx, "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		other, err := l.Allow(ctx, "signup", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, other)

		assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1"))
		mr.FastForward(time.Minute + time.Second)

		allowed, err = l.Allow(ctx, "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestFormLimiter_Limit(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	post := func(app *fiber.App) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/auth/login/", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("rejects over the limit", func(t *testing.T) {
		_, rdb := newMiniRedis(t)
		l := NewFormLimiter(&config.Config{Env: "production"}, rdb)
		app := fiber.New()
		app.Post("/auth/login/", l.Limit("login", 1, time.Minute), ok)

		assert.Equal(t, http.StatusOK, post(app))
		assert.Equal(t, http.StatusTooManyRequests, post(app))
	})

	t.Run("redis down lets requests through", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewFormLimiter(&config.Config{Env: "production"}, rdb)
		mr.Close()
		app := fiber.New()
		app.Post("/auth/login/", l.Limit("login", 1, time.Minute), ok)

		assert.Equal(t, http.StatusOK, post(app))
		assert.Equal(t, http.StatusOK, post(app))
	})
}
