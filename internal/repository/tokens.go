package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/oramahq/authcore/internal/model"
)

// TokenRepository persists hashed refresh tokens. Raw secrets never reach
// this layer; all lookups key on the hash.
type TokenRepository interface {
	// Create inserts a new refresh-token row.
	Create(ctx context.Context, t *model.RefreshToken) error
	// GetByHash loads a token row by its hash. A hash collision or unknown
	// hash is errs.ErrNotFound, never a server error.
	GetByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	// RevokeByHash marks the token revoked with the given reason, but only
	// if it is not revoked yet. The update is atomic and conditional: under
	// two concurrent redemptions of the same token exactly one caller sees
	// revoked=true. Returns false when no active row matched.
	RevokeByHash(ctx context.Context, hash, reason string) (bool, error)
	// RevokeAllForUser revokes every active token of the user (password
	// change, forced deactivation). Returns the number of tokens revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error)
}
