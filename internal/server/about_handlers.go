package server

import "github.com/gofiber/fiber/v2"

func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "about/author", nil)
}

func (s *Server) AboutTech(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "about/tech", nil)
}
