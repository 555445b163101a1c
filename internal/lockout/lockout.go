// Package lockout defines interfaces and implementations for temporary login
// lockout after repeated failed attempts.
package lockout

import (
	"context"
	"time"
)

// Guard controls login attempts and temporary lockouts per (account, ip).
type Guard interface {
	// Allow reports whether login is currently allowed and optional retry-after.
	Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, email string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
}
