package token

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oramahq/authcore/internal/model"
)

func testIssuer() *Issuer {
	return NewIssuer([]byte("test-signing-key"), "orama-auth", "orama-api", time.Hour, 7*24*time.Hour)
}

func testUser() *model.User {
	return &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    "alice@example.com",
		Username: "alice",
		Role:     model.RoleEngineer,
		Active:   true,
	}
}

func TestIssuePair_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := testIssuer()
	u := testUser()

	pair, hash, err := iss.IssuePair(u)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty token in pair: %+v", pair)
	}
	if hash != Hash(pair.RefreshToken) {
		t.Fatalf("returned hash does not match the refresh secret")
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("refresh expiry %v should outlive access expiry %v", pair.RefreshExpiresAt, pair.AccessExpiresAt)
	}

	ident, err := iss.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify fresh token: %v", err)
	}
	if ident.UserID != u.ID || ident.Email != u.Email || ident.Name != u.Username || ident.Role != u.Role {
		t.Fatalf("identity mismatch: %+v", ident)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	t.Parallel()

	iss := testIssuer()
	t0 := time.Now()
	iss.now = func() time.Time { return t0 }

	pair, _, err := iss.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := iss.Verify(pair.AccessToken); err != nil {
		t.Fatalf("fresh token must verify: %v", err)
	}

	// jump past TTL plus validation leeway
	iss.now = func() time.Time { return t0.Add(time.Hour + time.Minute) }
	if _, err := iss.Verify(pair.AccessToken); err == nil {
		t.Fatalf("expired token must fail verification")
	}
}

func TestVerify_RejectsWrongKeyIssuerAudience(t *testing.T) {
	t.Parallel()

	iss := testIssuer()
	pair, _, err := iss.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	otherKey := NewIssuer([]byte("another-key"), "orama-auth", "orama-api", time.Hour, time.Hour)
	if _, err := otherKey.Verify(pair.AccessToken); err == nil {
		t.Fatalf("token signed with a different key must fail")
	}

	otherIss := NewIssuer([]byte("test-signing-key"), "someone-else", "orama-api", time.Hour, time.Hour)
	if _, err := otherIss.Verify(pair.AccessToken); err == nil {
		t.Fatalf("issuer mismatch must fail")
	}

	otherAud := NewIssuer([]byte("test-signing-key"), "orama-auth", "other-api", time.Hour, time.Hour)
	if _, err := otherAud.Verify(pair.AccessToken); err == nil {
		t.Fatalf("audience mismatch must fail")
	}

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := iss.Verify(tampered); err == nil {
		t.Fatalf("tampered token must fail")
	}
}

func TestVerify_RejectsNonAccessTokenType(t *testing.T) {
	t.Parallel()

	iss := testIssuer()
	u := testUser()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "orama-auth",
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{"orama-api"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:      u.Role,
		TokenType: "refresh",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := iss.Verify(signed); err == nil {
		t.Fatalf("non-access token type must fail")
	}
}

func TestNewRefreshSecret_EntropyAndHash(t *testing.T) {
	t.Parallel()

	a, ah, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	b, _, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret(2): %v", err)
	}
	if a == b {
		t.Fatalf("two refresh secrets are equal — looks non-random")
	}
	// 64 bytes base64url without padding
	if len(a) != 86 {
		t.Fatalf("secret len=%d, want 86", len(a))
	}
	if ah != Hash(a) {
		t.Fatalf("hash mismatch")
	}
	if Hash(a) != Hash(a) {
		t.Fatalf("Hash not deterministic")
	}
	if len(ah) != 64 {
		t.Fatalf("hex sha256 len=%d, want 64", len(ah))
	}
}
