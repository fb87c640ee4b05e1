package taskauth

import (
	"context"
	"time"
)

// User is the persistent account record managed by this core. PasswordHash
// is opaque to everything except the password subpackage; the reset-token
// fields are owned by the reset lifecycle and must not be exposed to clients.
type User struct {
	ID           string
	Email        string
	Name         string
	Age          int
	PasswordHash string
	Blocked      bool
	ResetToken   string
	ResetExpiry  time.Time
	ResetUsed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResetStateKind tags the reset-token state of a user record.
type ResetStateKind uint8

const (
	// ResetAbsent means no reset token has been issued, or the fields were
	// cleared.
	ResetAbsent ResetStateKind = iota
	// ResetIssued means a token exists; Used and ExpiresAt decide whether it
	// is still redeemable.
	ResetIssued
)

// ResetState is the tagged view of the three persisted reset fields. The
// storage layout stays three columns for engine simplicity; application code
// branches on this variant instead of probing nullable fields.
type ResetState struct {
	Kind      ResetStateKind
	Token     string
	ExpiresAt time.Time
	Used      bool
}

// ResetState derives the tagged reset state from the persisted fields.
func (u *User) ResetState() ResetState {
	if u == nil || u.ResetToken == "" {
		return ResetState{Kind: ResetAbsent}
	}
	return ResetState{
		Kind:      ResetIssued,
		Token:     u.ResetToken,
		ExpiresAt: u.ResetExpiry,
		Used:      u.ResetUsed,
	}
}

// PublicUser is the client-visible projection of a User. It never carries
// the password hash or reset-token fields.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sanitized returns the public projection of u.
func (u *User) Sanitized() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Identity is the minimal authenticated identity attached to a request
// context by [Engine.Authenticate] and the middleware guard.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// UserStore is the persistence interface callers implement to integrate
// taskauth with their user database. The stores subpackage ships a Redis
// implementation and an in-memory one.
//
// Contract:
//   - GetByID, GetByEmail, and GetByResetToken return [ErrUserNotFound]
//     (possibly wrapped) on a lookup miss.
//   - GetByEmail matches case-insensitively; stored casing is preserved.
//   - Create and Update return [ErrEmailTaken] (possibly wrapped) when the
//     email is held by another record, compared case-insensitively.
//   - Update is a full-record write; the store's last-write-wins semantics
//     are the arbiter for concurrent writes to one user.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// Mailer delivers the password-reset link. Delivery runs asynchronously and
// a failure never fails the originating request; the persisted token is the
// source of truth.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// RegisterInput is the input for [Engine.Register]. All fields are required.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Name            string
	Age             int
}

// UpdateInput is the input for [Engine.UpdateProfile]. Zero values mean
// "leave unchanged"; at least one mutable field must be set. Changing
// Password requires OldPassword.
type UpdateInput struct {
	Email       string
	Name        string
	Age         int
	Password    string
	OldPassword string
}

// ResetValidation is returned by [Engine.ValidateResetToken] for a live
// token.
type ResetValidation struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
