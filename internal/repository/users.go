// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/oramahq/authcore/internal/model"
)

// UserRepository is the credential store: account rows, password hashes and
// account state. Uniqueness of email/username is case-insensitive and
// enforced by the backend.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists when the
	// email or username is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// SetPassword replaces the password hash and salt.
	SetPassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error
	// SetActive flips the soft-deactivation flag.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// UpdateLastLogin records the time and source IP of a successful login.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error
	// SetResetToken stores the hash and expiry of a pending password-reset
	// secret, replacing any previous one.
	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	// ConsumeResetToken atomically clears a pending, unexpired reset secret
	// matching the hash and returns the owning user ID. A miss (unknown,
	// already consumed or expired) is errs.ErrNotFound.
	ConsumeResetToken(ctx context.Context, hash string) (uuid.UUID, error)
}
