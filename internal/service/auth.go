// Package service contains the authentication orchestrator composing the
// credential store, refresh-token store, token issuer and login lockout.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/oramahq/authcore/internal/crypto"
	"github.com/oramahq/authcore/internal/errs"
	"github.com/oramahq/authcore/internal/lockout"
	"github.com/oramahq/authcore/internal/model"
	"github.com/oramahq/authcore/internal/repository"
	"github.com/oramahq/authcore/internal/token"
)

// resetTTL bounds the validity of a password-reset secret.
const resetTTL = time.Hour

// AuthService defines the account and token lifecycle operations.
type AuthService interface {
	// Register creates an account and issues its first token pair.
	Register(ctx context.Context, email, username, password string, role model.Role) (model.TokenPair, *model.User, error)
	// Login authenticates credentials with lockout applied per (email, ip).
	Login(ctx context.Context, email, password, ip string) (model.TokenPair, *model.User, error)
	// Refresh rotates a refresh token: the presented token is revoked and a
	// brand-new pair is issued. A token is redeemable at most once.
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	// Logout revokes the presented refresh token. Idempotent.
	Logout(ctx context.Context, refreshToken string) error
	// ChangePassword sets a new password and revokes every refresh token of
	// the user; the access token in the caller's hand expires naturally.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error
	// Deactivate soft-deactivates the account and revokes all its refresh tokens.
	Deactivate(ctx context.Context, userID uuid.UUID) error
	// ForgotPassword issues a single-use reset secret. Never reveals whether
	// the account exists.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword consumes a reset secret, sets the password and revokes
	// every refresh token of the user.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// ResetNotifier delivers a raw reset secret to the account's mailbox.
// Mail delivery itself lives outside this core.
type ResetNotifier func(email, resetToken string)

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	issuer *token.Issuer
	guard  lockout.Guard
	notify ResetNotifier
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, issuer *token.Issuer, guard lockout.Guard) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, issuer: issuer, guard: guard}
}

// WithResetNotifier sets the reset-secret delivery hook.
func (s *AuthServiceImpl) WithResetNotifier(n ResetNotifier) *AuthServiceImpl {
	s.notify = n
	return s
}

// Register creates a new active account. Email verification is not gated
// before first login; accounts are auto-confirmed.
func (s *AuthServiceImpl) Register(ctx context.Context, email, username, password string, role model.Role) (model.TokenPair, *model.User, error) {
	if email == "" || username == "" || password == "" {
		return model.TokenPair{}, nil, errors.New("empty email/username/password")
	}
	if !role.Valid() {
		return model.TokenPair{}, nil, errors.New("unknown role")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return model.TokenPair{}, nil, err
	}

	u := &model.User{
		ID:       uid,
		Email:    email,
		Username: username,
		Role:     role,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Active:   true,
	}
	// uniqueness is settled by the store, not a pre-check, so a racing
	// duplicate still maps to ErrAlreadyExists
	if err := s.users.Create(ctx, u); err != nil {
		return model.TokenPair{}, nil, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	return pair, u, nil
}

// Login authenticates with lockout by (email, ip). Unknown email and wrong
// password produce the identical ErrInvalidCredentials; only a deactivated
// account with valid credentials sees ErrAccountDeactivated.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.TokenPair, *model.User, error) {
	ipHash := lockout.HashIP(ip)

	allowed, _, err := s.guard.Allow(ctx, email, ipHash)
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	if !allowed {
		return model.TokenPair{}, nil, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, nil, err
		}
		if blocked, _, ferr := s.guard.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.TokenPair{}, nil, errs.ErrRateLimited
		}
		// identical sentinel whether the email exists or not
		return model.TokenPair{}, nil, errs.ErrInvalidCredentials
	}
	if !u.Active {
		// distinct message, only reachable with valid credentials
		return model.TokenPair{}, nil, errs.ErrAccountDeactivated
	}

	_ = s.guard.Success(ctx, email, ipHash)
	_ = s.users.UpdateLastLogin(ctx, u.ID, time.Now(), ip)

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	return pair, u, nil
}

// Refresh validates and rotates the presented refresh token. All expected
// failure causes (unknown, revoked, expired, inactive owner, lost race)
// collapse into ErrInvalidRefreshToken.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	hash := token.Hash(refreshToken)

	t, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, errs.ErrInvalidRefreshToken
		}
		return model.TokenPair{}, err
	}
	if t.Revoked || t.Expired(time.Now()) {
		return model.TokenPair{}, errs.ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, errs.ErrInvalidRefreshToken
		}
		return model.TokenPair{}, err
	}
	if !u.Active {
		return model.TokenPair{}, errs.ErrInvalidRefreshToken
	}

	// the conditional revoke is the success gate: of two concurrent
	// redemptions exactly one passes
	ok, err := s.tokens.RevokeByHash(ctx, hash, model.RevokedRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !ok {
		return model.TokenPair{}, errs.ErrInvalidRefreshToken
	}

	return s.issuePair(ctx, u)
}

// Logout revokes the presented refresh token. Revoking an unknown or
// already-revoked token is not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	_, err := s.tokens.RevokeByHash(ctx, token.Hash(refreshToken), model.RevokedLogout)
	return err
}

// ChangePassword verifies the current password, sets the new one and
// invalidates every existing session.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	if newPassword == "" {
		return errors.New("empty new password")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword([]byte(current), u.SaltAuth, u.PwdHash) {
		return errs.ErrInvalidCredentials
	}
	if err := s.setPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	_, err = s.tokens.RevokeAllForUser(ctx, userID, model.RevokedPasswordChange)
	return err
}

// Deactivate is the admin-forced variant: the account is soft-deactivated and
// every refresh token is revoked in the same call.
func (s *AuthServiceImpl) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	_, err := s.tokens.RevokeAllForUser(ctx, userID, model.RevokedDeactivated)
	return err
}

// ForgotPassword stores a single-use, time-limited reset secret and hands the
// raw value to the notifier. The result is success from the caller's view
// whether or not the account exists.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, hash, err := token.NewResetSecret()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, hash, time.Now().Add(resetTTL)); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify(u.Email, raw)
	}
	return nil
}

// ResetPassword redeems a reset secret. Consumption is an atomic conditional
// update in the store, so a secret is usable at most once.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if newPassword == "" {
		return errors.New("empty new password")
	}
	userID, err := s.users.ConsumeResetToken(ctx, token.Hash(resetToken))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrInvalidResetToken
		}
		return err
	}
	if err := s.setPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	_, err = s.tokens.RevokeAllForUser(ctx, userID, model.RevokedPasswordChange)
	return err
}

// issuePair mints a pair via the issuer and persists the refresh hash.
func (s *AuthServiceImpl) issuePair(ctx context.Context, u *model.User) (model.TokenPair, error) {
	pair, hash, err := s.issuer.IssuePair(u)
	if err != nil {
		return model.TokenPair{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.TokenPair{}, err
	}
	rt := &model.RefreshToken{
		ID:        id,
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return model.TokenPair{}, err
	}
	return pair, nil
}

// setPassword hashes with a fresh salt and stores the result.
func (s *AuthServiceImpl) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, pkgcrypto.HashPassword([]byte(password), salt), salt)
}
