package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/oramahq/authcore/internal/errs"
	"github.com/oramahq/authcore/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, username, role, pwd_hash, salt_auth, active,
COALESCE(reset_token_hash, ''), reset_expires_at, last_login_at, last_login_ip, created_at`

// Create inserts a new user row. Case-insensitive uniqueness of email and
// username is enforced by functional unique indexes.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, username, role, pwd_hash, salt_auth, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.Username, u.Role, u.PwdHash, u.SaltAuth, u.Active)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email)=lower($1)`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Role, &u.PwdHash, &u.SaltAuth,
		&u.Active, &u.ResetTokenHash, &u.ResetExpiresAt, &u.LastLoginAt, &u.LastLoginIP, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetPassword replaces the password hash and salt.
func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, pwdHash, salt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetActive flips the soft-deactivation flag.
func (r *UserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const q = `UPDATE users SET active=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateLastLogin records time and source IP of a successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error {
	const q = `UPDATE users SET last_login_at=$2, last_login_ip=$3 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id, at, ip)
	return err
}

// SetResetToken stores the hash and expiry of a pending password-reset secret.
func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	const q = `UPDATE users SET reset_token_hash=$2, reset_expires_at=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, hash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ConsumeResetToken clears a pending, unexpired reset secret in one statement
// so a reset token can be redeemed at most once.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, hash string) (uuid.UUID, error) {
	const q = `
UPDATE users SET reset_token_hash=NULL, reset_expires_at=NULL
WHERE reset_token_hash=$1 AND reset_expires_at > now()
RETURNING id`
	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx, q, hash).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, pgx.ErrNoRows):
		return uuid.Nil, errs.ErrNotFound
	default:
		return uuid.Nil, err
	}
}
