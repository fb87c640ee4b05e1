package taskauth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBlocked is returned when the resolved account carries the
	// blocked flag.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrLoginThrottled is returned when the per-address login attempt
	// budget is exhausted. It carries no hint about the credential outcome.
	ErrLoginThrottled = errors.New("login attempts rate limited")
	// ErrMissingToken is returned by Authenticate when the Authorization
	// header is absent or not of the form "Bearer <token>".
	ErrMissingToken = errors.New("missing bearer token")
	// ErrTokenInvalid is returned for a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound is returned when a user id or email resolves to no
	// stored record. UserStore implementations return it from their Get
	// methods.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an email address is already registered
	// to another account. The comparison is case-insensitive.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidInput is the kind carried by malformed-request validation
	// failures (missing fields, bad email format).
	ErrInvalidInput = errors.New("invalid input")
	// ErrPasswordPolicy is the kind carried by password strength failures.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrPasswordReuse is returned when a new password equals the current one.
	ErrPasswordReuse = errors.New("new password cannot be the same as the current password")
	// ErrBadOldPassword is returned when the supplied current password fails
	// verification during a password change.
	ErrBadOldPassword = errors.New("current password incorrect")
	// ErrAgeOutOfRange is the kind carried by age bound failures.
	ErrAgeOutOfRange = errors.New("age out of range")
	// ErrResetTokenNotFound is returned when no stored reset token matches.
	ErrResetTokenNotFound = errors.New("reset token not found")
	// ErrResetTokenUsed is returned for a reset token that was already
	// consumed. Reported even when the token is also expired.
	ErrResetTokenUsed = errors.New("reset token already used")
	// ErrResetTokenExpired is returned for an unused reset token past its
	// expiry.
	ErrResetTokenExpired = errors.New("reset token expired")
	// ErrStoreUnavailable wraps user-store failures that are not a lookup
	// miss or a uniqueness violation.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before
	// its dependencies were wired through Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ValidationError carries the field and human-readable message of a
// client-correctable validation failure. It unwraps to one of the kind
// sentinels above so callers branch with [errors.Is] while the HTTP layer
// surfaces Message.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.kind }

func newValidationError(kind error, field, message string) error {
	return &ValidationError{Field: field, Message: message, kind: kind}
}
