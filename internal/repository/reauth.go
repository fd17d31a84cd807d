package repository

import (
	"context"
	"time"

	"github.com/perchhq/perch/internal/domain"
)

type ReauthTokenRepository interface {
	// Issue stores the token, replacing any existing token for the same
	// user (last write wins).
	Issue(ctx context.Context, token *domain.ReauthToken) error

	// Claim atomically removes and returns the token with the given hash,
	// so a token can be consumed at most once. Returns
	// domain.ErrReauthMissing if no such token exists.
	Claim(ctx context.Context, tokenHash string) (*domain.ReauthToken, error)

	// DeleteForUser discards any outstanding token for the user.
	DeleteForUser(ctx context.Context, userID int64) error

	// PurgeExpired removes tokens whose window ended before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
