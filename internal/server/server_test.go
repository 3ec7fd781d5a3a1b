package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "pa55-w0rd-long"

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	store *testutil.MemoryStorage
	mr    *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:                  "test",
		JWTSecret:            "test-secret-key-12345678901234567890123456789012",
		SessionCookieName:    "yatube_session",
		SessionTTLHours:      1,
		PostsPerPage:         10,
		PageCacheTTLSeconds:  20,
		MediaRoot:            t.TempDir(),
		MediaURL:             "/media/",
		ImageMaxUploadSizeMB: 5,
		FeatureFlags:         "page_cache=on,webp_thumbnails=on",
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(database.SQLiteDSN(":memory:")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	for _, fn := range tweak {
		fn(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db := setupDB(t)
	store := testutil.NewMemoryStorage()

	srv, err := NewServerWithDeps(cfg, db, rdb, store)
	require.NoError(t, err)
	app, err := srv.NewApp()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{srv: srv, app: app, db: db, store: store, mr: mr}
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Username: username, FirstName: strings.ToUpper(username[:1]) + username[1:], Password: string(hash)}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "All about " + slug}
	require.NoError(t, e.db.Create(g).Error)
	return g
}

func (e *testEnv) post(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) cookie(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := e.srv.sessions.Token(u)
	require.NoError(t, err)
	return e.srv.sessions.CookieName() + "=" + token
}

type result struct {
	status   int
	body     string
	location string
	header   http.Header
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookie string) result {
	t.Helper()
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{
		status:   resp.StatusCode,
		body:     string(body),
		location: resp.Header.Get("Location"),
		header:   resp.Header,
	}
}

func (e *testEnv) get(t *testing.T, path, cookie string) result {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookie string) result {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, cookie)
}

func (e *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, fileName string, file []byte, cookie string) result {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.do(t, req, cookie)
}

func postCount(body string) int {
	return strings.Count(body, "data-post-id=")
}
