package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.TokenHash, utc(t.ExpiresAt), t.Revoked, utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.AccountID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

// RevokeRefreshToken is a compare-and-swap on the revoked flag: of any
// number of concurrent callers exactly one sees true.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, updated_at = ?
		WHERE token_hash = ? AND revoked = 0`,
		utc(now), hash,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshTokensRepo) RevokeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, updated_at = ?
		WHERE revoked = 0 AND expires_at <= ?`,
		utc(now), utc(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) CountActiveRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM refresh_tokens
		WHERE account_id = ? AND revoked = 0 AND expires_at > ?`,
		accountID, utc(now),
	).Scan(&n)
	return n, err
}
