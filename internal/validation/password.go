// Package validation provides input validation utilities
package validation

import (
	"errors"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"welcome1":   {},
	"abc12345":   {},
	"letmein1":   {},
	"11111111":   {},
	"00000000":   {},
	"admin123":   {},
	"passw0rd":   {},
	"superman":   {},
}

// ValidatePassword checks a new password against the site's password policy.
// username may be empty when it is not known yet.
func ValidatePassword(password, username string) error {
	if len([]rune(password)) < minPasswordLength {
		return errors.New("This password is too short. It must contain at least 8 characters.")
	}
	if len([]rune(password)) > maxPasswordLength {
		return errors.New("This password is too long. It must contain at most 128 characters.")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return errors.New("This password is too common.")
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return errors.New("This password is entirely numeric.")
	}

	if u := strings.ToLower(strings.TrimSpace(username)); len(u) >= 3 {
		p := strings.ToLower(password)
		if strings.Contains(p, u) || strings.Contains(u, p) {
			return errors.New("The password is too similar to the username.")
		}
	}

	return nil
}
