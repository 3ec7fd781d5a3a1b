package server

import (
	"html/template"
	"net/url"
	"strings"
	"testing"

	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, env *testEnv, res result) string {
	t.Helper()
	for _, raw := range res.header.Values("Set-Cookie") {
		if strings.HasPrefix(raw, env.srv.sessions.CookieName()+"=") {
			return strings.SplitN(raw, ";", 2)[0]
		}
	}
	t.Fatalf("no session cookie in %v", res.header.Values("Set-Cookie"))
	return ""
}

func TestSignup(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.user(t, "taken")

	form := env.get(t, "/auth/signup/", "")
	require.Equal(t, 200, form.status)
	assert.Contains(t, form.body, `name="password2"`)

	res := env.postForm(t, "/auth/signup/", url.Values{
		"first_name": {"Ada"},
		"username":   {"ada"},
		"email":      {"ada@example.com"},
		"password1":  {"correct-horse-battery"},
		"password2":  {"correct-horse-battery"},
	}, "")
	require.Equal(t, 302, res.status)
	assert.Equal(t, "/", res.location)

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "ada").First(&stored).Error)
	assert.NotEqual(t, "correct-horse-battery", stored.Password)

	feed := env.get(t, "/follow/", sessionCookie(t, env, res))
	assert.Equal(t, 200, feed.status, "signup logs the user in")

	dup := env.postForm(t, "/auth/signup/", url.Values{
		"username":  {"taken"},
		"password1": {"correct-horse-battery"},
		"password2": {"different-horse-battery"},
	}, "")
	require.Equal(t, 200, dup.status)
	assert.Contains(t, dup.body, template.HTMLEscapeString(service.MsgDuplicateUsername))
	assert.Contains(t, dup.body, `data-error="password2"`)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.user(t, "leo")

	form := env.get(t, "/auth/login/?next=/create/", "")
	require.Equal(t, 200, form.status)
	assert.Contains(t, form.body, `name="next" value="/create/"`)

	bad := env.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}}, "")
	require.Equal(t, 200, bad.status)
	assert.Contains(t, bad.body, `data-error="__all__"`)
	assert.Contains(t, bad.body, `value="leo"`)

	cases := []struct {
		next string
		want string
	}{
		{"/create/", "/create/"},
		{"", "/"},
		{"//evil.example.com/", "/"},
		{"https://evil.example.com/", "/"},
	}
	for _, tc := range cases {
		res := env.postForm(t, "/auth/login/", url.Values{
			"username": {"leo"},
			"password": {testPassword},
			"next":     {tc.next},
		}, "")
		assert.Equal(t, 302, res.status, tc.next)
		assert.Equal(t, tc.want, res.location, tc.next)
		sessionCookie(t, env, res)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.user(t, "leo")
	cookie := env.cookie(t, user)

	require.Equal(t, 200, env.get(t, "/follow/", cookie).status)

	out := env.get(t, "/auth/logout/", cookie)
	require.Equal(t, 200, out.status)
	assert.Contains(t, out.body, "You have been logged out.")
	assert.NotContains(t, out.body, `data-username="leo"`)

	again := env.get(t, "/follow/", cookie)
	assert.Equal(t, 302, again.status, "the old token is blacklisted")
	assert.Equal(t, "/auth/login/?next=/follow/", again.location)
}

func TestPasswordChange(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.user(t, "leo")
	cookie := env.cookie(t, user)

	assert.Equal(t, 302, env.get(t, "/auth/password_change/", "").status)
	require.Equal(t, 200, env.get(t, "/auth/password_change/", cookie).status)

	wrong := env.postForm(t, "/auth/password_change/", url.Values{
		"old_password":  {"not-it"},
		"new_password1": {"brand-new-secret"},
		"new_password2": {"brand-new-secret"},
	}, cookie)
	require.Equal(t, 200, wrong.status)
	assert.Contains(t, wrong.body, `data-error="old_password"`)

	res := env.postForm(t, "/auth/password_change/", url.Values{
		"old_password":  {testPassword},
		"new_password1": {"brand-new-secret"},
		"new_password2": {"brand-new-secret"},
	}, cookie)
	assert.Equal(t, 302, res.status)
	assert.Equal(t, "/auth/password_change/done/", res.location)
	assert.Equal(t, 200, env.get(t, "/auth/password_change/done/", cookie).status)

	login := env.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"brand-new-secret"}}, "")
	assert.Equal(t, 302, login.status)
}

func TestStaticPages(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/about/author/", "/about/tech/", "/auth/login/", "/auth/signup/"} {
		res := env.get(t, path, "")
		assert.Equal(t, 200, res.status, path)
	}

	missing := env.get(t, "/no/such/page/", "")
	assert.Equal(t, 404, missing.status)
	assert.Contains(t, missing.body, "Custom 404")
	assert.Contains(t, missing.body, "/no/such/page/")
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, 200, env.get(t, "/health/live", "").status)
	ready := env.get(t, "/health/ready", "")
	assert.Equal(t, 200, ready.status)
	assert.Contains(t, ready.body, `"redis":"healthy"`)
}
