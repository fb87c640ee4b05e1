package taskauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskhive/taskauth/internal/throttle"
	"github.com/taskhive/taskauth/jwt"
	"github.com/taskhive/taskauth/password"
)

// Engine is the authentication core. All methods are safe for concurrent use
// after construction through [Builder.Build].
type Engine struct {
	config   Config
	store    UserStore
	mailer   Mailer
	hasher   *password.Hasher
	tokens   *jwt.Manager
	throttle *throttle.Limiter
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() time.Time
}

// Close releases background resources: the throttle's eviction loop and the
// audit dispatcher (after draining buffered events).
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.throttle != nil {
		e.throttle.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// ProductionMode reports whether client-facing messages suppress internal
// error detail. Integration layers pass it to [MessageForError].
func (e *Engine) ProductionMode() bool {
	if e == nil {
		return true
	}
	return e.config.Security.ProductionMode
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates an email/password pair and mints a session token.
// Every call consumes one slot of the caller address's throttle window
// before any credential work happens, so a denial reveals nothing about the
// credential. Order of checks: throttle, lookup, password, blocked flag.
func (e *Engine) Login(ctx context.Context, email, pass string) (string, *PublicUser, error) {
	if e == nil || e.store == nil || e.hasher == nil || e.tokens == nil || e.throttle == nil {
		return "", nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	if !e.throttle.Allow(ip) {
		e.metricInc(MetricLoginThrottled)
		e.emitAudit(ctx, auditEventLoginThrottled, false, "", ErrLoginThrottled, func() map[string]string {
			return map[string]string{"scope": "login"}
		})
		return "", nil, ErrLoginThrottled
	}

	if email == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, nil)
		return "", nil, ErrInvalidCredentials
	}

	user, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, nil)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, storeFailure(err)
	}

	if !e.hasher.Verify(pass, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrInvalidCredentials, nil)
		return "", nil, ErrInvalidCredentials
	}

	if user.Blocked {
		e.metricInc(MetricLoginBlocked)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrAccountBlocked, nil)
		return "", nil, ErrAccountBlocked
	}

	token, err := e.tokens.Issue(user.ID, user.Email)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "token_signing_failed"}
		})
		return "", nil, ErrEngineNotReady
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	return token, user.Sanitized(), nil
}

// Authenticate converts a raw Authorization header into an authenticated
// identity. Checks run in order and short-circuit: header shape, token
// signature and expiry, user existence, blocked flag. On success the
// returned identity carries id, email, and name only.
func (e *Engine) Authenticate(ctx context.Context, authorization string) (*Identity, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	token, ok := bearerToken(authorization)
	if !ok {
		e.metricInc(MetricAuthFailure)
		return nil, ErrMissingToken
	}

	claims, err := e.tokens.Parse(token)
	if err != nil {
		e.metricInc(MetricAuthFailure)
		if errors.Is(err, jwt.ErrExpired) {
			e.emitAudit(ctx, auditEventAuthFailure, false, "", ErrTokenExpired, nil)
			return nil, ErrTokenExpired
		}
		e.emitAudit(ctx, auditEventAuthFailure, false, "", ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	}

	user, err := e.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricAuthFailure)
			e.emitAudit(ctx, auditEventAuthFailure, false, claims.UserID, ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, storeFailure(err)
	}

	if user.Blocked {
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthFailure, false, user.ID, ErrAccountBlocked, nil)
		return nil, ErrAccountBlocked
	}

	e.metricInc(MetricAuthSuccess)
	return &Identity{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}

func storeFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(ErrStoreUnavailable, err)
}
