package taskauth

import (
	"context"
	"errors"
)

const (
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventLoginThrottled  = "login_rate_limited"
	auditEventAuthFailure     = "auth_failure"
	auditEventRegisterSuccess = "register_success"
	auditEventRegisterFailure = "register_failure"
	auditEventUpdateSuccess   = "profile_update_success"
	auditEventUpdateFailure   = "profile_update_failure"
	auditEventResetRequest    = "password_reset_request"
	auditEventResetResend     = "password_reset_resend"
	auditEventResetValidate   = "password_reset_validate"
	auditEventResetConsume    = "password_reset_consume"
	auditEventResetDelivery   = "password_reset_delivery"
)

// AuditErrorCode is the machine-readable error discriminator carried on
// audit events. Codes never include credential material.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrMissingToken       AuditErrorCode = "missing_token"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrAccountBlocked     AuditErrorCode = "account_blocked"
	auditErrDuplicate          AuditErrorCode = "duplicate_email"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrBadOldPassword     AuditErrorCode = "bad_old_password"
	auditErrValidation         AuditErrorCode = "validation"
	auditErrResetNotFound      AuditErrorCode = "reset_not_found"
	auditErrResetUsed          AuditErrorCode = "reset_used"
	auditErrResetExpired       AuditErrorCode = "reset_expired"
	auditErrDeliveryFailed     AuditErrorCode = "delivery_failed"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginThrottled):
		return auditErrRateLimited
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrAccountBlocked):
		return auditErrAccountBlocked
	case errors.Is(err, ErrEmailTaken):
		return auditErrDuplicate
	case errors.Is(err, ErrPasswordPolicy), errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrBadOldPassword):
		return auditErrBadOldPassword
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAgeOutOfRange):
		return auditErrValidation
	case errors.Is(err, ErrResetTokenNotFound):
		return auditErrResetNotFound
	case errors.Is(err, ErrResetTokenUsed):
		return auditErrResetUsed
	case errors.Is(err, ErrResetTokenExpired):
		return auditErrResetExpired
	case errors.Is(err, errMailDelivery):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}
