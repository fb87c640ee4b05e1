package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired marks a well-formed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks a malformed token or a bad signature.
	ErrInvalid = errors.New("token malformed or bad signature")
)

// Config controls token signing and verification.
type Config struct {
	// Secret is the HS256 signing key. Minimum 32 bytes.
	Secret []byte
	// SessionTTL is the token lifetime.
	SessionTTL time.Duration
	Issuer     string
	// Leeway tolerates clock skew during expiry checks. Max 2 minutes.
	Leeway time.Duration
	// Now overrides the time source. Defaults to time.Now.
	Now func() time.Time
}

// SessionClaims are the identity claims embedded in a session token.
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens. Instances are immutable and
// safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 secret must be at least 32 bytes")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{config: cfg}, nil
}

// Issue mints a signed session token for the given identity.
func (m *Manager) Issue(userID, email string) (string, error) {
	now := m.config.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies a token string and returns its claims. Error kinds:
// [ErrExpired] for a valid but stale token, [ErrInvalid] for everything
// else — bad signature, wrong algorithm, malformed payload.
func (m *Manager) Parse(tokenStr string) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
