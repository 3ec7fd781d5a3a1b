package server

import (
	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm shows the registration form.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/signup", fiber.Map{"form": service.SignupInput{}})
}

// Signup creates the account, logs it in and goes to the main page.
func (s *Server) Signup(c *fiber.Ctx) error {
	var in service.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form")
	}

	user, err := s.userService.Signup(c.UserContext(), in)
	if err != nil {
		errs, ok := formErrors(err)
		if !ok {
			return err
		}
		in.Password1, in.Password2 = "", ""
		return s.render(c, fiber.StatusOK, "users/signup", fiber.Map{"form": in, "errors": errs})
	}

	if err := s.sessions.Issue(c, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user signed up", "username", user.Username)
	return c.Redirect("/", fiber.StatusFound)
}

// LoginForm shows the login form.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/login", fiber.Map{
		"username": "",
		"next":     c.Query("next"),
	})
}

// Login checks credentials and follows next when it stays on the site.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := c.FormValue("next", c.Query("next"))

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		errs, ok := formErrors(err)
		if !ok {
			return err
		}
		return s.render(c, fiber.StatusOK, "users/login", fiber.Map{
			"username": username,
			"next":     next,
			"errors":   errs,
		})
	}

	if err := s.sessions.Issue(c, user); err != nil {
		return err
	}
	return c.Redirect(middleware.SafeNext(next, "/"), fiber.StatusFound)
}

// Logout ends the session and shows a goodbye page.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Clear(c)
	return s.render(c, fiber.StatusOK, "users/logged_out", nil)
}

// PasswordChangeForm shows the password change form.
func (s *Server) PasswordChangeForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/password_change_form", nil)
}

// PasswordChange replaces the password and keeps the user logged in.
func (s *Server) PasswordChange(c *fiber.Ctx) error {
	var in service.PasswordChangeInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form")
	}

	if err := s.userService.ChangePassword(c.UserContext(), currentUser(c).ID, in); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			return err
		}
		return s.render(c, fiber.StatusOK, "users/password_change_form", fiber.Map{"errors": errs})
	}
	return c.Redirect("/auth/password_change/done/", fiber.StatusFound)
}

// PasswordChangeDone confirms a password change.
func (s *Server) PasswordChangeDone(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/password_change_done", nil)
}
