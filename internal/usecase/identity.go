package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/email"
	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

// dummyPasswordHash is compared against when the username is unknown, so
// the unknown-user path costs the same as a wrong-password check and the
// two cases are indistinguishable from outside.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type IdentityUsecase struct {
	users      repository.UserRepository
	follows    repository.FollowRepository
	tokens     repository.ReauthTokenRepository
	email      email.Sender
	cache      FeedCache
	logger     *slog.Logger
	bcryptCost int
}

func NewIdentityUsecase(
	users repository.UserRepository,
	follows repository.FollowRepository,
	tokens repository.ReauthTokenRepository,
	emailSender email.Sender,
	cache FeedCache,
	logger *slog.Logger,
	bcryptCost int,
) *IdentityUsecase {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &IdentityUsecase{
		users:      users,
		follows:    follows,
		tokens:     tokens,
		email:      emailSender,
		cache:      cache,
		logger:     logger.With("component", "identity"),
		bcryptCost: bcryptCost,
	}
}

// Signup hashes the password and creates the user. Username and email
// uniqueness is enforced by the storage constraints, so two concurrent
// signups for the same name cannot both succeed.
func (u *IdentityUsecase) Signup(ctx context.Context, username, emailAddr, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, username, emailAddr, string(hash))
	if err != nil {
		return nil, err
	}

	metrics.SignupsTotal.Inc()
	go u.sendWelcome(user.Email, user.Username)

	return user, nil
}

func (u *IdentityUsecase) sendWelcome(to, username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := fmt.Sprintf("<p>Welcome to Perch, %s! Post something and find people to follow.</p>", username)
	if err := u.email.Send(ctx, to, "Welcome to Perch", body); err != nil {
		u.logger.Error("send welcome email", "error", err)
	}
}

// Authenticate verifies the password for the named user. Unknown user and
// wrong password both come back as ErrInvalidCredentials.
func (u *IdentityUsecase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (u *IdentityUsecase) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *IdentityUsecase) Search(ctx context.Context, q string, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	users, err := u.users.Search(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

type UpdateProfileInput struct {
	Username       string
	Email          string
	Bio            *string
	Location       *string
	ImageURL       string
	HeaderImageURL string
}

// UpdateProfile replaces the user's editable fields. The transport layer
// gates this behind a consumed reauth token.
func (u *IdentityUsecase) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = input.Username
	user.Email = input.Email
	user.Bio = input.Bio
	user.Location = input.Location
	user.ImageURL = input.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = domain.DefaultImageURL
	}
	user.HeaderImageURL = input.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = domain.DefaultHeaderImageURL
	}

	updated, err := u.users.UpdateProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetPassword verifies the current password, stores a fresh hash, and
// invalidates any outstanding reauth token so the new credential is the
// only path to the next sensitive operation.
func (u *IdentityUsecase) SetPassword(ctx context.Context, userID int64, current, next string) error {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), u.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := u.tokens.DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("invalidate reauth token: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and, through the repository's
// transaction, all messages and follow/like edges referencing them.
func (u *IdentityUsecase) DeleteAccount(ctx context.Context, userID int64) error {
	var followerIDs []int64
	if u.cache != nil {
		followers, err := u.follows.Followers(ctx, userID)
		if err != nil {
			u.logger.Warn("list followers for cache invalidation", "error", err)
		}
		for _, f := range followers {
			followerIDs = append(followerIDs, f.ID)
		}
	}

	if err := u.users.Delete(ctx, userID); err != nil {
		return err
	}
	metrics.AccountsDeletedTotal.Inc()

	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, append(followerIDs, userID)...); err != nil {
			u.logger.Warn("invalidate feed cache", "error", err)
		}
	}
	return nil
}
