package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/oramahq/authcore/internal/errs"
	"github.com/oramahq/authcore/internal/model"
)

// TokenRepo implements TokenRepository using PostgreSQL.
type TokenRepo struct{ db *DB }

// NewTokenRepo constructs a refresh-token repository.
func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

// Create inserts a new refresh-token row.
func (r *TokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `
INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.UserID, t.TokenHash, t.ExpiresAt)
	if isUniqueViolation(err) {
		// hash collision on a 512-bit secret; treat as a transient miss
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByHash selects a token row by its hash.
func (r *TokenRepo) GetByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	const q = `
SELECT id, user_id, token_hash, created_at, expires_at, revoked, COALESCE(revoked_reason, ''), revoked_at
FROM refresh_tokens WHERE token_hash=$1`
	var t model.RefreshToken
	err := r.db.Pool.QueryRow(ctx, q, hash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt,
		&t.Revoked, &t.RevokedReason, &t.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// RevokeByHash is the rotation gate: the WHERE revoked=false condition makes
// the update atomic, so of two concurrent redemptions of the same token only
// one observes RowsAffected()==1.
func (r *TokenRepo) RevokeByHash(ctx context.Context, hash, reason string) (bool, error) {
	const q = `
UPDATE refresh_tokens SET revoked=true, revoked_reason=$2, revoked_at=now()
WHERE token_hash=$1 AND revoked=false`
	tag, err := r.db.Pool.Exec(ctx, q, hash, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeAllForUser revokes every active token of the user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	const q = `
UPDATE refresh_tokens SET revoked=true, revoked_reason=$2, revoked_at=now()
WHERE user_id=$1 AND revoked=false`
	tag, err := r.db.Pool.Exec(ctx, q, userID, reason)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
