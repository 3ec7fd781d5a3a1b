package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"yatube/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgInvalidSlug   = "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens."
	MsgInvalidName   = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgMismatch      = "The two password fields didn’t match."
)

var (
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report form field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates a form struct carrying `validate` tags. Failures come back
// as a validation AppError keyed by form field name.
func Struct(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	appErr := models.NewValidationError("Please correct the errors below.")
	for _, fe := range verrs {
		if _, taken := appErr.Fields[fe.Field()]; taken {
			continue
		}
		appErr.WithField(fe.Field(), message(fe))
	}
	return appErr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return MsgRequired
	case "max":
		n := utf8.RuneCountInString(fmt.Sprint(fe.Value()))
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), n)
	case "email":
		return MsgInvalidEmail
	case "slug":
		return MsgInvalidSlug
	case "username":
		return MsgInvalidName
	case "eqfield":
		return MsgMismatch
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

// ValidateSlug checks a group slug.
func ValidateSlug(slug string) error {
	if err := validate.Var(slug, "required,max=50,slug"); err != nil {
		return errors.New(MsgInvalidSlug)
	}
	return nil
}

// ValidateUsername checks a username.
func ValidateUsername(username string) error {
	if err := validate.Var(username, "required,max=150,username"); err != nil {
		return errors.New(MsgInvalidName)
	}
	return nil
}

// ValidateEmail checks an email address. Empty is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := validate.Var(email, "email,max=254"); err != nil {
		return errors.New(MsgInvalidEmail)
	}
	return nil
}
