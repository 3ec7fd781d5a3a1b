// Package middleware provides request-scoped middleware: sessions, logging,
// metrics, tracing and rate limiting.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionIssuer   = "yatube"
	sessionAudience = "yatube-web"

	// LoginURL is where anonymous users are sent by LoginRequired.
	LoginURL = "/auth/login/"

	localsUserID = "userID"
	localsUser   = "user"
)

// ErrInvalidSession is returned by Parse for any token that cannot be trusted.
var ErrInvalidSession = errors.New("invalid session")

// UserLoader resolves the user a session belongs to.
type UserLoader func(ctx context.Context, id uint) (*models.User, error)

// SessionManager issues and verifies the signed session cookie.
type SessionManager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	redis      *redis.Client
	loadUser   UserLoader
}

// NewSessionManager builds a SessionManager. rdb may be nil, in which case
// logout only drops the cookie and tokens are not revoked server-side.
func NewSessionManager(cfg *config.Config, rdb *redis.Client, loader UserLoader) *SessionManager {
	name := cfg.SessionCookieName
	if name == "" {
		name = "yatube_session"
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &SessionManager{
		secret:     []byte(cfg.JWTSecret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.IsProduction(),
		redis:      rdb,
		loadUser:   loader,
	}
}

// CookieName returns the name of the session cookie.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// Token signs a session token for the user.
func (m *SessionManager) Token(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      sessionIssuer,
		"aud":      sessionAudience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(m.ttl).Unix(),
		"jti":      generateJTI(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Issue logs the user in by setting a fresh session cookie.
func (m *SessionManager) Issue(c *fiber.Ctx, user *models.User) error {
	token, err := m.Token(user)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	setUser(c, user)
	return nil
}

// Parse verifies a token and returns its claims.
func (m *SessionManager) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (m *SessionManager) revoked(ctx context.Context, claims jwt.MapClaims) bool {
	jti, _ := claims["jti"].(string)
	if jti == "" || m.redis == nil {
		return false
	}
	n, err := m.redis.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		// Redis down: accept the token rather than logging everyone out.
		Logger.WarnContext(ctx, "session blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}

// Clear logs the current session out: the token id is blacklisted until it
// would have expired and the cookie is dropped.
func (m *SessionManager) Clear(c *fiber.Ctx) {
	if raw := c.Cookies(m.cookieName); raw != "" && m.redis != nil {
		if claims, err := m.Parse(raw); err == nil {
			jti, _ := claims["jti"].(string)
			ttl := time.Minute
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				ttl = time.Until(exp.Time)
			}
			if jti != "" && ttl > 0 {
				if err := m.redis.Set(c.UserContext(), blacklistKey(jti), "1", ttl).Err(); err != nil {
					Logger.WarnContext(c.UserContext(), "failed to blacklist session", "error", err)
				}
			}
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(localsUserID, nil)
	c.Locals(localsUser, nil)
}

// LoadSession resolves the session cookie into the current user. Requests
// without a usable session continue anonymously.
func (m *SessionManager) LoadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(m.cookieName)
		if raw == "" {
			return c.Next()
		}

		claims, err := m.Parse(raw)
		if err != nil || m.revoked(c.UserContext(), claims) {
			return c.Next()
		}

		sub, err := claims.GetSubject()
		if err != nil {
			return c.Next()
		}
		id, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return c.Next()
		}

		user, err := m.loadUser(c.UserContext(), uint(id))
		if err != nil || user == nil {
			// Deleted users keep a valid signature but no account.
			return c.Next()
		}

		setUser(c, user)
		return c.Next()
	}
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals(localsUserID, user.ID)
	c.Locals(localsUser, user)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(localsUser).(*models.User)
	return user, ok && user != nil
}

// LoginRequired redirects anonymous users to the login page, remembering
// where they were going.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); ok {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds the login URL carrying next=target.
func LoginRedirectURL(target string) string {
	next := strings.ReplaceAll(url.QueryEscape(target), "%2F", "/")
	return LoginURL + "?next=" + next
}

// SafeNext reports a local redirect target, falling back when the value could
// leave the site.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
