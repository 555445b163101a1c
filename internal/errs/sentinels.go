// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers. Authentication failures carry
// the exact client-facing message so the HTTP layer never rewords them.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (email or username taken).
	ErrAlreadyExists = errors.New("email or username already taken")

	// ErrInvalidCredentials is returned for both unknown email and wrong password.
	// The message must stay identical for the two cases.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDeactivated indicates login against a soft-deactivated account.
	ErrAccountDeactivated = errors.New("account is deactivated")

	// ErrInvalidRefreshToken covers missing, revoked and expired refresh tokens alike.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrInvalidResetToken covers missing, consumed and expired password-reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrRateLimited indicates temporary login lockout after repeated failures.
	ErrRateLimited = errors.New("too many login attempts")
)
