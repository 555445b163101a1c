package lockout

import (
	"context"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed lockout guard with a sliding failure window and a
// fixed block duration once the threshold is reached. The counter row is the
// spec's login-attempt/lockout-end account state, kept in a side table keyed
// by (lower(email), ip hash) rather than on the user row.
type PG struct {
	pool     pgxQuerier
	window   time.Duration
	maxFails int
	blockFor time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed lockout guard.
func NewPG(pool *pgxpool.Pool, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: pool, window: window, maxFails: maxFails, blockFor: blockFor}
}

// NewPGWithQuerier constructs a guard over any pgx querier (tests).
func NewPGWithQuerier(q pgxQuerier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: q, window: window, maxFails: maxFails, blockFor: blockFor}
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Allow reports whether login is currently allowed and a retry-after duration.
func (g *PG) Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_lockout WHERE email_key=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := g.pool.QueryRow(ctx, q, emailKey(email), ipHash).Scan(&blockedUntil)
	switch err {
	case nil:
		if blockedUntil.After(time.Now()) {
			return false, time.Until(blockedUntil), nil
		}
		return true, 0, nil
	case pgx.ErrNoRows:
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for (email, ip).
func (g *PG) Success(ctx context.Context, email string, ipHash []byte) error {
	const q = `
INSERT INTO login_lockout (email_key, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (email_key, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := g.pool.Exec(ctx, q, emailKey(email), ipHash)
	return err
}

// Failure records a failed attempt; the window resets the counter when the
// previous failure is older than the window.
func (g *PG) Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO login_lockout (email_key, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (email_key, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - login_lockout.updated_at > $3::interval THEN 1 ELSE login_lockout.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := g.pool.QueryRow(ctx, q, emailKey(email), ipHash, g.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails >= g.maxFails {
		blockUntil := time.Now().Add(g.blockFor)
		const upd = `UPDATE login_lockout SET blocked_until=$3 WHERE email_key=$1 AND ip_hash=$2`
		if _, err := g.pool.Exec(ctx, upd, emailKey(email), ipHash, blockUntil); err != nil {
			return false, 0, err
		}
		return true, g.blockFor, nil
	}
	return false, 0, nil
}
