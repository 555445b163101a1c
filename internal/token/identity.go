package token

import (
	"github.com/gofrs/uuid/v5"

	"github.com/oramahq/authcore/internal/model"
)

// Identity is the authenticated caller extracted from a verified access
// token. It is threaded explicitly through handlers; there is no ambient
// "current user" lookup anywhere.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   model.Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == model.RoleAdmin }

// IsOwner reports whether the identity may act on a resource owned by
// ownerID. Admins bypass the ownership requirement.
func (id Identity) IsOwner(ownerID uuid.UUID) bool {
	return id.UserID == ownerID || id.IsAdmin()
}
