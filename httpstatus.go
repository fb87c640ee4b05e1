package taskauth

import (
	"errors"
	"net/http"
)

// StatusForError maps engine errors onto the HTTP status codes of the
// authentication surface. Unknown errors map to 500; callers decide the
// body through [MessageForError].
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrBadOldPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountBlocked):
		return http.StatusLocked
	case errors.Is(err, ErrLoginThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrResetTokenNotFound),
		errors.Is(err, ErrResetTokenUsed),
		errors.Is(err, ErrResetTokenExpired),
		errors.Is(err, ErrPasswordPolicy),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrPasswordReuse),
		errors.Is(err, ErrAgeOutOfRange),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ReasonForError returns the machine-readable discriminator for reset-token
// rejections ("not_found", "used", "expired"), or "" for everything else.
func ReasonForError(err error) string {
	switch {
	case errors.Is(err, ErrResetTokenNotFound):
		return "not_found"
	case errors.Is(err, ErrResetTokenUsed):
		return "used"
	case errors.Is(err, ErrResetTokenExpired):
		return "expired"
	default:
		return ""
	}
}

// MessageForError returns the client-facing message for err. Validation
// failures surface their specific message; authentication failures stay
// coarse by construction; unexpected errors collapse to a generic message
// when production is true, keeping internal detail inside the audit stream.
func MessageForError(err error, production bool) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if StatusForError(err) == http.StatusInternalServerError && production {
		return "internal server error"
	}
	return err.Error()
}
