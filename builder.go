package taskauth

import (
	"errors"
	"time"

	"github.com/taskhive/taskauth/internal/throttle"
	"github.com/taskhive/taskauth/jwt"
	"github.com/taskhive/taskauth/password"
)

// Builder assembles an [Engine]. Configure it with the With* methods and
// call [Builder.Build] exactly once.
type Builder struct {
	config    Config
	store     UserStore
	mailer    Mailer
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserStore sets the persistent user record store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithMailer sets the reset-link delivery collaborator. When absent, reset
// tokens are still issued and persisted; delivery is skipped and audited.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to
// [NoOpSink] when auditing is enabled without a sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the engine's time source. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration, wires the hasher, token manager,
// throttle, audit dispatcher, and metrics, and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("user store required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	hasher, err := password.NewHasher(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		SessionTTL: cfg.JWT.SessionTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}

	limiter := throttle.New(throttle.Config{
		MaxAttempts:   cfg.Throttle.MaxAttempts,
		Window:        cfg.Throttle.Window,
		SweepInterval: cfg.Throttle.SweepInterval,
		MaxEntries:    cfg.Throttle.MaxEntries,
	}, now)

	var metrics *Metrics
	if cfg.Metrics.Enabled {
		metrics = NewMetrics(cfg.Metrics)
	}

	engine := &Engine{
		config:   cfg,
		store:    b.store,
		mailer:   b.mailer,
		hasher:   hasher,
		tokens:   tokens,
		throttle: limiter,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  metrics,
		now:      now,
	}

	b.built = true
	return engine, nil
}
