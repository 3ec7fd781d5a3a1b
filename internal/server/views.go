package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

const baseLayout = "layouts/base"

//go:embed templates
var templatesFS embed.FS

func (s *Server) newViews() (*html.Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("media", s.images.URL)
	engine.AddFunc("linebreaksbr", linebreaksbr)
	engine.AddFunc("truncatechars", truncatechars)
	engine.AddFunc("date", func(t time.Time) string { return t.Format("2 January 2006") })
	engine.AddFunc("isEllipsis", func(n int) bool { return n == pagination.Ellipsis })
	engine.AddFunc("fieldError", fieldError)
	engine.AddFunc("nonFieldError", func(errs map[string]string) string { return fieldError(errs, models.NonFieldErrors) })
	return engine, nil
}

// render fills in what every page needs: the current user, the CSRF token
// and the footer year.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	var viewerID uint
	if user, ok := middleware.CurrentUser(c); ok {
		data["user"] = user
		viewerID = user.ID
	}
	if token, ok := c.Locals(csrfContextKey).(string); ok {
		data["csrf_token"] = token
	}
	data["year"] = time.Now().Year()
	data["path"] = c.Path()
	data["webp"] = s.flags.Enabled(featureflags.WebPThumbnails, viewerID)
	return c.Status(status).Render(name, data)
}

// linebreaksbr escapes text and turns newlines into <br>.
func linebreaksbr(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// truncatechars shortens text to n characters, ending with an ellipsis.
func truncatechars(n int, text string) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// fieldError looks up a field message in a map of form errors.
func fieldError(errs map[string]string, field string) string {
	if errs == nil {
		return ""
	}
	return errs[field]
}
