// Package token mints and verifies signed access tokens and generates the
// opaque refresh secrets they are paired with.
package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oramahq/authcore/internal/model"
)

const accessTokenType = "access"

// Claims is the access-token payload: registered claims plus the identity
// fields the authorization guard needs without a database round trip.
type Claims struct {
	jwt.RegisteredClaims
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      model.Role `json:"role"`
	TokenType string     `json:"typ"`
}

// Issuer mints HS256 access tokens and opaque refresh secrets with fixed
// expiry windows. The signing key is loaded once at startup; a missing key
// is a startup-fatal condition handled in main, never per request.
type Issuer struct {
	signKey    []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer constructs an Issuer with the given signing key and validity windows.
func NewIssuer(signKey []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		signKey:    signKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair mints a new access/refresh pair for the user. It returns the pair
// (refresh secret in the clear, exactly once) and the secret's hash for the
// caller to persist. Nothing is written or revoked here; the caller decides.
func (i *Issuer) IssuePair(u *model.User) (model.TokenPair, string, error) {
	now := i.now()
	accessExp := now.Add(i.accessTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
		Name:      u.Username,
		Email:     u.Email,
		Role:      u.Role,
		TokenType: accessTokenType,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signKey)
	if err != nil {
		return model.TokenPair{}, "", err
	}

	refresh, hash, err := NewRefreshSecret()
	if err != nil {
		return model.TokenPair{}, "", err
	}

	pair := model.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}
	return pair, hash, nil
}

// Verify checks signature, issuer, audience, expiry and token type, and
// returns the embedded identity. Any failure is a single generic error;
// callers must not distinguish the cause to the client.
func (i *Issuer) Verify(raw string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return i.signKey, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.TokenType != accessTokenType {
		return Identity{}, errors.New("invalid token")
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return Identity{}, errors.New("invalid token")
	}
	return Identity{UserID: id, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}
