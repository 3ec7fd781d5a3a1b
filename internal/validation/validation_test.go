package validation

import (
	"strings"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		username string
		wantErr  string
	}{
		{"Valid", "correct-horse-battery", "leo", ""},
		{"Exactly Min Length", "tr0ub4dr", "", ""},
		{"Too Short", "abc12", "", "too short"},
		{"Too Long", strings.Repeat("x", 129), "", "too long"},
		{"Common", "Password1", "", "too common"},
		{"Numeric", "8675309123", "", "entirely numeric"},
		{"Similar To Username", "leo-tolstoy-1828", "tolstoy", "too similar"},
		{"Short Username Ignored", "ab-secret-pass", "ab", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		slug string
		ok   bool
	}{
		{"cats", true},
		{"test-slug_2", true},
		{"CamelCase", true},
		{"", false},
		{"with space", false},
		{"кошки", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}
	for _, tt := range tests {
		err := ValidateSlug(tt.slug)
		assert.Equal(t, tt.ok, err == nil, "slug=%q", tt.slug)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		username string
		ok       bool
	}{
		{"leo", true},
		{"user.name+tag@site", true},
		{"Лев", true},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("u", 150), true},
		{strings.Repeat("u", 151), false},
	}
	for _, tt := range tests {
		err := ValidateUsername(tt.username)
		assert.Equal(t, tt.ok, err == nil, "username=%q", tt.username)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail(""))
	assert.NoError(t, ValidateEmail("leo@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
}

type sampleForm struct {
	Text  string `form:"text" validate:"nonblank"`
	Title string `form:"title" validate:"required,max=5"`
	Slug  string `form:"slug" validate:"required,slug"`
	Email string `form:"email" validate:"omitempty,email"`
	Pass1 string `form:"password1" validate:"required"`
	Pass2 string `form:"password2" validate:"eqfield=Pass1"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	err := Struct(sampleForm{Text: "hi", Title: "ok", Slug: "ok", Pass1: "a", Pass2: "a"})
	assert.NoError(t, err)

	err = Struct(sampleForm{
		Text:  "   ",
		Title: "too long",
		Slug:  "bad slug",
		Email: "nope",
		Pass1: "a",
		Pass2: "b",
	})
	require.Error(t, err)
	require.True(t, models.IsValidation(err))

	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, MsgRequired, appErr.Fields["text"])
	assert.Equal(t, "Ensure this value has at most 5 characters (it has 8).", appErr.Fields["title"])
	assert.Equal(t, MsgInvalidSlug, appErr.Fields["slug"])
	assert.Equal(t, MsgInvalidEmail, appErr.Fields["email"])
	assert.Equal(t, MsgMismatch, appErr.Fields["password2"])
}
