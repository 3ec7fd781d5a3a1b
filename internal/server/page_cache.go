package server

import (
	"log/slog"

	"yatube/internal/cache"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// PageCache serves rendered GET responses from the page store for the
// configured TTL. The key includes the viewer, so guests and users never
// share an entry. Writes do not invalidate entries.
func (s *Server) PageCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ttl := s.config.PageCacheTTL()
		viewer := viewerID(c)
		if c.Method() != fiber.MethodGet || ttl <= 0 || !s.flags.Enabled(featureflags.PageCache, viewer) {
			return c.Next()
		}

		ctx := c.UserContext()
		key := cache.PageKey(c.OriginalURL(), viewer)

		page, ok, err := s.pages.Get(ctx, key)
		switch {
		case err != nil:
			observability.PageCacheRequests.WithLabelValues("error").Inc()
			middleware.Logger.WarnContext(ctx, "page cache read failed", slog.String("error", err.Error()))
		case ok:
			observability.PageCacheRequests.WithLabelValues("hit").Inc()
			c.Set(fiber.HeaderContentType, page.ContentType)
			c.Set("X-Page-Cache", "HIT")
			return c.Status(page.Status).Send(page.Body)
		default:
			observability.PageCacheRequests.WithLabelValues("miss").Inc()
		}

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		entry := &cache.Page{
			Status:      fiber.StatusOK,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := s.pages.Set(ctx, key, entry, ttl); err != nil {
			middleware.Logger.WarnContext(ctx, "page cache write failed", slog.String("error", err.Error()))
		}
		c.Set("X-Page-Cache", "MISS")
		return nil
	}
}
