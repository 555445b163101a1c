// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the coarse access level assigned to an account.
type Role string

// Known roles. Admin bypasses resource-ownership checks.
const (
	RoleAdmin    Role = "admin"
	RoleEngineer Role = "engineer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEngineer
}

// Revocation reasons recorded when a refresh token is invalidated.
// A revoked token is never un-revoked.
const (
	RevokedRefresh        = "refresh"
	RevokedLogout         = "logout"
	RevokedPasswordChange = "password_change"
	RevokedDeactivated    = "deactivated"
)

// TokenPair collects a freshly issued access/refresh token with their expiries.
// The refresh token is in the clear here exactly once; only its hash is stored.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// User represents an account. Passwords are stored as Argon2id hashes with
// per-user salts; accounts are soft-deactivated, never physically deleted.
type User struct {
	ID             uuid.UUID // PK
	Email          string    // unique, case-insensitive
	Username       string    // unique, case-insensitive
	Role           Role
	PwdHash        []byte // Argon2id(password, SaltAuth)
	SaltAuth       []byte // per-user auth salt
	Active         bool
	ResetTokenHash string     // hex SHA-256 of the pending reset secret, "" if none
	ResetExpiresAt *time.Time // expiry of the pending reset secret
	LastLoginAt    *time.Time
	LastLoginIP    string
	CreatedAt      time.Time
}

// RefreshToken is the persisted half of an opaque refresh secret. The secret
// itself never touches the database; lookups go through its SHA-256 hash.
type RefreshToken struct {
	ID            uuid.UUID // PK
	UserID        uuid.UUID // FK -> users.id
	TokenHash     string    // hex SHA-256, unique
	CreatedAt     time.Time
	ExpiresAt     time.Time // fixed at creation, never extended
	Revoked       bool
	RevokedReason string // one of the Revoked* constants, "" while active
	RevokedAt     *time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
