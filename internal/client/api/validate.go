package api

import (
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted before calling login.
const MinPasswordLength = 4

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateCredentials checks login input before it is sent anywhere.
func ValidateCredentials(user, password string) error {
	if !IsValidEmail(user) {
		return &ValidationError{Field: "user", Message: "enter a valid e-mail address"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "password is too short"}
	}
	return nil
}
