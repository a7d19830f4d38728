package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
)

const jwtSecretKey = "jwt_secret"

// SettingsRepository holds key/value settings and the token revocation list.
type SettingsRepository struct {
	conn
}

// NewSettingsRepository returns a repository bound to the given pool.
func NewSettingsRepository(pool *sql.DB, dialect db.Dialect) *SettingsRepository {
	return &SettingsRepository{conn{pool: pool, dialect: dialect}}
}

// GetJWTSecret retrieves the JWT signing secret, generating and storing
// one on first use. Insert-then-select keeps concurrent startups agreeing
// on a single value.
func (r *SettingsRepository) GetJWTSecret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Persistence("failed to generate jwt secret", err)
	}

	_, err := r.exec(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		jwtSecretKey, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", apperr.Persistence("failed to store jwt secret", err)
	}

	secret, _, err := r.Get(ctx, jwtSecretKey)
	return secret, err
}

// Get returns a setting and whether it exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.queryRow(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Persistence("failed to read setting", err)
	}
	return value, true, nil
}

// Set stores or replaces a setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.exec(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return apperr.Persistence("failed to store setting", err)
	}
	return nil
}

// RevokeToken records a token ID as revoked until it would have expired.
// Expired entries are pruned on the way.
func (r *SettingsRepository) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := r.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now().UTC()); err != nil {
		return apperr.Persistence("failed to prune revoked tokens", err)
	}
	_, err := r.exec(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?) ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(),
	)
	if err != nil {
		return apperr.Persistence("failed to revoke token", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token ID has been revoked.
func (r *SettingsRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, apperr.Persistence("failed to check token", err)
	}
	return n > 0, nil
}
