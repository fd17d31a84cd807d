package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const DefaultReauthTTL = 10 * time.Minute

// ReauthUsecase is the two-step gate in front of sensitive identity
// mutations: re-verify the password to receive a short-lived token, then
// spend the token on exactly one operation.
type ReauthUsecase struct {
	users  repository.UserRepository
	tokens repository.ReauthTokenRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewReauthUsecase(users repository.UserRepository, tokens repository.ReauthTokenRepository, ttl time.Duration, logger *slog.Logger) *ReauthUsecase {
	if ttl == 0 {
		ttl = DefaultReauthTTL
	}
	return &ReauthUsecase{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		logger: logger.With("component", "reauth"),
	}
}

// Request verifies the password and issues a fresh token, replacing any
// previous one for the user. A failed verification leaves an existing
// token untouched.
func (u *ReauthUsecase) Request(ctx context.Context, userID int64, password string) (string, time.Time, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(u.ttl)
	token := &domain.ReauthToken{
		UserID:    userID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: expiresAt,
	}
	if err := u.tokens.Issue(ctx, token); err != nil {
		return "", time.Time{}, fmt.Errorf("store reauth token: %w", err)
	}

	metrics.ReauthIssuedTotal.Inc()
	return rawToken, expiresAt, nil
}

// CheckAndConsume spends the token. The claim removes it from storage
// before the expiry check, so an expired token is consumed by the failed
// check and a valid one can never be spent twice.
func (u *ReauthUsecase) CheckAndConsume(ctx context.Context, rawToken string) (int64, error) {
	token, err := u.tokens.Claim(ctx, hashToken(rawToken))
	if err != nil {
		metrics.ReauthConsumedTotal.WithLabelValues("missing").Inc()
		return 0, err
	}
	if token.ExpiredAt(time.Now()) {
		metrics.ReauthConsumedTotal.WithLabelValues("expired").Inc()
		return 0, domain.ErrReauthExpired
	}

	metrics.ReauthConsumedTotal.WithLabelValues("success").Inc()
	return token.UserID, nil
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}
