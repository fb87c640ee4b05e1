package taskauth

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	minAge            = 13
	maxAge            = 122
)

// validatePasswordStrength enforces the shared strength rule: at least 8
// characters with one uppercase letter, one lowercase letter, and one digit.
// Used by registration, profile update, and reset consumption.
func validatePasswordStrength(pass string) error {
	if len(pass) < minPasswordLength {
		return newValidationError(ErrPasswordPolicy, "password", "must be at least 8 characters")
	}

	var upper, lower, digit bool
	for _, r := range pass {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return newValidationError(ErrPasswordPolicy, "password",
			"must contain an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return newValidationError(ErrInvalidInput, "email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newValidationError(ErrInvalidInput, "email", "is not a valid address")
	}
	return nil
}

func validateAge(age int) error {
	if age < minAge || age > maxAge {
		return newValidationError(ErrAgeOutOfRange, "age", "must be between 13 and 122")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newValidationError(ErrInvalidInput, "name", "is required")
	}
	return nil
}
