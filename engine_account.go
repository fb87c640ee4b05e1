package taskauth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Register validates and creates a new account. The stored password is
// always the hash; the plaintext never reaches the store or the audit
// stream. Email uniqueness is checked case-insensitively before the write,
// and again by the store at write time to close the lookup/create race.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*PublicUser, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.validateRegistration(ctx, in); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegisterDuplicate)
		} else {
			e.metricInc(MetricRegisterInvalid)
		}
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return nil, err
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{"reason": "hash_failed"}
		})
		return nil, errors.Join(ErrEngineNotReady, err)
	}

	now := e.now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Age:          in.Age,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrEmailTaken, nil)
			return nil, ErrEmailTaken
		}
		return nil, storeFailure(err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, user.ID, nil, nil)
	return user.Sanitized(), nil
}

func (e *Engine) validateRegistration(ctx context.Context, in RegisterInput) error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateAge(in.Age); err != nil {
		return err
	}
	if err := validatePasswordStrength(in.Password); err != nil {
		return err
	}
	if in.Password != in.PasswordConfirm {
		return ErrPasswordMismatch
	}

	_, err := e.store.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return storeFailure(err)
	}
}

// UpdateProfile applies a partial mutation to the account identified by
// userID. At least one mutable field must be present. An email change
// re-checks uniqueness excluding the current record; a password change
// requires the current password and rejects reuse of it.
func (e *Engine) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (*PublicUser, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}
	if in.Email == "" && in.Name == "" && in.Age == 0 && in.Password == "" {
		err := newValidationError(ErrInvalidInput, "", "at least one field must be provided")
		e.metricInc(MetricProfileUpdateRejected)
		e.emitAudit(ctx, auditEventUpdateFailure, false, userID, err, nil)
		return nil, err
	}

	user, err := e.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricProfileUpdateRejected)
			e.emitAudit(ctx, auditEventUpdateFailure, false, userID, ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, storeFailure(err)
	}

	if err := e.applyProfileChanges(ctx, user, in); err != nil {
		e.metricInc(MetricProfileUpdateRejected)
		e.emitAudit(ctx, auditEventUpdateFailure, false, user.ID, err, nil)
		return nil, err
	}

	user.UpdatedAt = e.now().UTC()
	if err := e.store.Update(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricProfileUpdateRejected)
			e.emitAudit(ctx, auditEventUpdateFailure, false, user.ID, ErrEmailTaken, nil)
			return nil, ErrEmailTaken
		}
		return nil, storeFailure(err)
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventUpdateSuccess, true, user.ID, nil, nil)
	return user.Sanitized(), nil
}

func (e *Engine) applyProfileChanges(ctx context.Context, user *User, in UpdateInput) error {
	if in.Email != "" {
		if err := validateEmail(in.Email); err != nil {
			return err
		}
		existing, err := e.store.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			if existing.ID != user.ID {
				return ErrEmailTaken
			}
		case errors.Is(err, ErrUserNotFound):
		default:
			return storeFailure(err)
		}
		user.Email = in.Email
	}

	if in.Name != "" {
		if err := validateName(in.Name); err != nil {
			return err
		}
		user.Name = in.Name
	}

	if in.Age != 0 {
		if err := validateAge(in.Age); err != nil {
			return err
		}
		user.Age = in.Age
	}

	if in.Password != "" {
		if in.OldPassword == "" {
			return newValidationError(ErrInvalidInput, "oldPassword", "is required to change the password")
		}
		if !e.hasher.Verify(in.OldPassword, user.PasswordHash) {
			return ErrBadOldPassword
		}
		if in.Password == in.OldPassword {
			return ErrPasswordReuse
		}
		if err := validatePasswordStrength(in.Password); err != nil {
			return err
		}
		hash, err := e.hasher.Hash(in.Password)
		if err != nil {
			return errors.Join(ErrEngineNotReady, err)
		}
		user.PasswordHash = hash
	}

	return nil
}
