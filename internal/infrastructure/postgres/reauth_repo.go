package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/perchhq/perch/internal/domain"
)

type ReauthTokenRepository struct {
	pool *pgxpool.Pool
}

func NewReauthTokenRepository(pool *pgxpool.Pool) *ReauthTokenRepository {
	return &ReauthTokenRepository{pool: pool}
}

// Issue upserts on user_id: one token per user, last write wins.
func (r *ReauthTokenRepository) Issue(ctx context.Context, token *domain.ReauthToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reauth_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()`,
		token.UserID, token.TokenHash, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("issue reauth token: %w", err)
	}
	return nil
}

// Claim deletes and returns in one statement, so exactly one caller can
// ever consume a given token.
func (r *ReauthTokenRepository) Claim(ctx context.Context, tokenHash string) (*domain.ReauthToken, error) {
	var t domain.ReauthToken
	err := r.pool.QueryRow(ctx, `
		DELETE FROM reauth_tokens
		WHERE token_hash = $1
		RETURNING user_id, token_hash, expires_at, created_at`,
		tokenHash).Scan(&t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReauthMissing
		}
		return nil, fmt.Errorf("claim reauth token: %w", err)
	}
	return &t, nil
}

func (r *ReauthTokenRepository) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM reauth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete reauth token: %w", err)
	}
	return nil
}

func (r *ReauthTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reauth_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge reauth tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
