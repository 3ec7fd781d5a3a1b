package server

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route parameter. Anything else is a 404,
// as for a path that does not exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// currentUser returns the logged-in user. Routes behind LoginRequired always
// have one.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

func viewerID(c *fiber.Ctx) uint {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return 0
}

// formErrors splits a service error into field messages for the template.
// ok is false when err is not a validation error and must be propagated.
func formErrors(err error) (map[string]string, bool) {
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code != models.CodeValidation {
		return nil, false
	}
	fields := appErr.Fields
	if len(fields) == 0 {
		fields = map[string]string{models.NonFieldErrors: appErr.Message}
	}
	return fields, true
}

// readImage returns the uploaded "image" file, or nil when none was sent.
func readImage(c *fiber.Ctx) (*service.ImageUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &service.ImageUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func uintString(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
