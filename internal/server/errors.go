package server

import (
	"errors"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders the site's error pages. Handlers deal with validation
// and authorization themselves, so what reaches here is a missing entity, a
// routing error or a failure.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return s.renderNotFound(c)
		}
		if fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).SendString(fe.Message)
		}
	}

	if models.IsNotFound(err) {
		return s.renderNotFound(c)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	if rerr := s.render(c, fiber.StatusInternalServerError, "core/500", nil); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	return nil
}

// NotFound is the catch-all route.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.renderNotFound(c)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusNotFound, "core/404", fiber.Map{"path": c.Path()})
}
