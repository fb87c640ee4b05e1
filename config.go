package taskauth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config defines all engine tuning. Instances are configured during
// initialization and treated as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Throttle ThrottleConfig
	Reset    ResetConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig
}

// JWTConfig controls session-token signing and lifetime.
type JWTConfig struct {
	// Secret is the HS256 signing key. Minimum 32 bytes.
	Secret []byte
	// SessionTTL is the bearer-token lifetime. Default 2h.
	SessionTTL time.Duration
	Issuer     string
	// Leeway tolerates clock skew during expiry checks. Max 2 minutes.
	Leeway time.Duration
}

// PasswordConfig controls the bcrypt work factor.
type PasswordConfig struct {
	Cost int
}

// ThrottleConfig controls the in-memory sliding-window login throttle.
type ThrottleConfig struct {
	// MaxAttempts allowed per client address within Window. Default 5.
	MaxAttempts int
	// Window is the sliding-window length. Default 10m.
	Window time.Duration
	// SweepInterval is how often elapsed windows are evicted. Default equals
	// Window.
	SweepInterval time.Duration
	// MaxEntries triggers an inline sweep when the counter map grows past
	// it. It bounds memory, never denies a request by itself. Default 65536.
	MaxEntries int
}

// ResetConfig controls the password-reset token lifecycle.
type ResetConfig struct {
	// TokenTTL is the reset-token lifetime. Default 1h.
	TokenTTL time.Duration
	// TokenBytes is the entropy of a token before encoding. Minimum and
	// default 32 (256 bits).
	TokenBytes int
	// LinkBaseURL is the page the emailed link points at. The token is
	// appended as a `token` query parameter.
	LinkBaseURL string
}

// AuditConfig controls dispatcher buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// SecurityConfig holds deployment-mode switches.
type SecurityConfig struct {
	// ProductionMode suppresses internal error detail in client-facing
	// messages. Detail still reaches the audit sink.
	ProductionMode bool
}

// DefaultConfig returns the baseline configuration: 2h sessions, 5 login
// attempts per 10-minute window, 1h single-use reset tokens, audit and
// metrics enabled. The JWT secret must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SessionTTL: 2 * time.Hour,
			Issuer:     "taskhive",
		},
		Password: PasswordConfig{
			Cost: bcrypt.DefaultCost,
		},
		Throttle: ThrottleConfig{
			MaxAttempts: 5,
			Window:      10 * time.Minute,
			MaxEntries:  65536,
		},
		Reset: ResetConfig{
			TokenTTL:   time.Hour,
			TokenBytes: 32,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Security: SecurityConfig{
			ProductionMode: true,
		},
	}
}

// Validate checks the configuration for values that would weaken the
// security posture or misbehave at runtime.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if c.JWT.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("jwt leeway must be within [0, 2m]")
	}
	if c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost {
		return errors.New("bcrypt cost out of range")
	}
	if c.Throttle.MaxAttempts < 1 {
		return errors.New("throttle max attempts must be >= 1")
	}
	if c.Throttle.Window <= 0 {
		return errors.New("throttle window must be positive")
	}
	if c.Throttle.SweepInterval < 0 {
		return errors.New("throttle sweep interval must not be negative")
	}
	if c.Throttle.MaxEntries < 0 {
		return errors.New("throttle max entries must not be negative")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("reset token ttl must be positive")
	}
	if c.Reset.TokenBytes < 32 {
		return errors.New("reset token must carry at least 32 bytes of entropy")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.JWT.Secret != nil {
		out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	}
	return out
}
