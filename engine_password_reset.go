package taskauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/url"
	"time"

	"github.com/taskhive/taskauth/internal"
)

const resetDeliveryTimeout = 10 * time.Second

// errMailDelivery classifies mailer failures on the audit stream. It never
// surfaces to callers; delivery is fire-and-forget.
var errMailDelivery = errors.New("reset mail delivery failed")

// RequestPasswordReset issues a single-use reset token for the account
// holding email and mails the reset link. The outcome is identical whether
// or not the email has an account: unknown addresses return nil with no
// token issued, so the response shape can never leak account existence.
// Delivery runs asynchronously; a delivery failure is audited but does not
// fail the request, because the persisted token is the source of truth.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	return e.issueResetToken(ctx, email, auditEventResetRequest)
}

// ResendPasswordReset has the same contract as [Engine.RequestPasswordReset]
// and additionally supersedes any previously issued token: the stored fields
// are overwritten, so the old token value simply stops matching.
func (e *Engine) ResendPasswordReset(ctx context.Context, email string) error {
	return e.issueResetToken(ctx, email, auditEventResetResend)
}

func (e *Engine) issueResetToken(ctx context.Context, email, event string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if err := validateEmail(email); err != nil {
		e.emitAudit(ctx, event, false, "", err, nil)
		return err
	}

	user, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same visible outcome as the found case, minus the token.
			e.metricInc(MetricResetRequested)
			e.emitAudit(ctx, event, true, "", nil, func() map[string]string {
				return map[string]string{"enumeration_safe": "true"}
			})
			return nil
		}
		return storeFailure(err)
	}

	token, err := internal.NewResetToken(e.config.Reset.TokenBytes)
	if err != nil {
		e.emitAudit(ctx, event, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "token_generation_failed"}
		})
		return errors.Join(ErrEngineNotReady, err)
	}

	user.ResetToken = token
	user.ResetExpiry = e.now().UTC().Add(e.config.Reset.TokenTTL)
	user.ResetUsed = false
	user.UpdatedAt = e.now().UTC()

	if err := e.store.Update(ctx, user); err != nil {
		e.emitAudit(ctx, event, false, user.ID, ErrStoreUnavailable, nil)
		return storeFailure(err)
	}

	go e.deliverResetLink(user.Email, token)

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, event, true, user.ID, nil, nil)
	return nil
}

func (e *Engine) deliverResetLink(email, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), resetDeliveryTimeout)
	defer cancel()

	if e.mailer == nil {
		e.emitAudit(ctx, auditEventResetDelivery, false, "", nil, func() map[string]string {
			return map[string]string{"reason": "no_mailer_configured"}
		})
		return
	}

	if err := e.mailer.SendPasswordReset(ctx, email, e.resetLink(token)); err != nil {
		e.metricInc(MetricResetDeliveryFailed)
		e.emitAudit(ctx, auditEventResetDelivery, false, "", errMailDelivery, func() map[string]string {
			return map[string]string{"reason": "delivery_failed"}
		})
		return
	}

	e.emitAudit(ctx, auditEventResetDelivery, true, "", nil, nil)
}

func (e *Engine) resetLink(token string) string {
	base := e.config.Reset.LinkBaseURL
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateResetToken reports whether token is redeemable and for whom.
// Rejection reasons, in check order: not found, already used, expired.
// Used is checked before expiry: "already used" is the more specific
// terminal state for a token that is both.
func (e *Engine) ValidateResetToken(ctx context.Context, token string) (*ResetValidation, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.lookupResetToken(ctx, token)
	if err != nil {
		e.metricInc(MetricResetRejected)
		e.emitAudit(ctx, auditEventResetValidate, false, "", err, nil)
		return nil, err
	}

	e.emitAudit(ctx, auditEventResetValidate, true, user.ID, nil, nil)
	return &ResetValidation{Email: user.Email, ExpiresAt: user.ResetExpiry}, nil
}

// ConsumeResetToken redeems token and installs newPassword. The token is
// re-validated exactly as [Engine.ValidateResetToken]; any rejection leaves
// the stored record untouched. On success the used flag is set and the
// expiry cleared, while the token value is retained so a replayed consume or
// validate reports "used" rather than "not found".
func (e *Engine) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	if e == nil || e.store == nil || e.hasher == nil {
		return ErrEngineNotReady
	}

	user, err := e.lookupResetToken(ctx, token)
	if err != nil {
		e.metricInc(MetricResetRejected)
		e.emitAudit(ctx, auditEventResetConsume, false, "", err, nil)
		return err
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		e.metricInc(MetricResetRejected)
		e.emitAudit(ctx, auditEventResetConsume, false, user.ID, err, nil)
		return err
	}
	// The old plaintext is not available here, so reuse is detected by
	// verifying the candidate against the stored hash.
	if e.hasher.Verify(newPassword, user.PasswordHash) {
		e.metricInc(MetricResetRejected)
		e.emitAudit(ctx, auditEventResetConsume, false, user.ID, ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventResetConsume, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "hash_failed"}
		})
		return errors.Join(ErrEngineNotReady, err)
	}

	user.PasswordHash = hash
	user.ResetUsed = true
	user.ResetExpiry = time.Time{}
	user.UpdatedAt = e.now().UTC()

	if err := e.store.Update(ctx, user); err != nil {
		e.emitAudit(ctx, auditEventResetConsume, false, user.ID, ErrStoreUnavailable, nil)
		return storeFailure(err)
	}

	e.metricInc(MetricResetConsumed)
	e.emitAudit(ctx, auditEventResetConsume, true, user.ID, nil, nil)
	return nil
}

func (e *Engine) lookupResetToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrResetTokenNotFound
	}

	user, err := e.store.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, storeFailure(err)
	}

	state := user.ResetState()
	if state.Kind != ResetIssued ||
		subtle.ConstantTimeCompare([]byte(state.Token), []byte(token)) != 1 {
		return nil, ErrResetTokenNotFound
	}
	if state.Used {
		return nil, ErrResetTokenUsed
	}
	if e.now().After(state.ExpiresAt) {
		return nil, ErrResetTokenExpired
	}

	return user, nil
}
