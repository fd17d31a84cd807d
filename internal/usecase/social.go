package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
)

type SocialUsecase struct {
	follows repository.FollowRepository
	cache   FeedCache
	logger  *slog.Logger
}

func NewSocialUsecase(follows repository.FollowRepository, cache FeedCache, logger *slog.Logger) *SocialUsecase {
	return &SocialUsecase{
		follows: follows,
		cache:   cache,
		logger:  logger.With("component", "social"),
	}
}

// Follow adds the edge follower -> followed. Repeating an existing follow
// is not an error: alreadyFollowing reports the no-op so clients can
// retry safely.
func (u *SocialUsecase) Follow(ctx context.Context, followerID, followedID int64) (alreadyFollowing bool, err error) {
	if followerID == followedID {
		return false, domain.ErrSelfFollow
	}

	created, err := u.follows.Create(ctx, followerID, followedID)
	if err != nil {
		return false, err
	}
	if created {
		metrics.FollowMutationsTotal.WithLabelValues("follow").Inc()
		u.invalidateFeed(ctx, followerID)
	}
	return !created, nil
}

// Unfollow removes the edge. Absent edges report wasFollowing=false
// instead of failing.
func (u *SocialUsecase) Unfollow(ctx context.Context, followerID, followedID int64) (wasFollowing bool, err error) {
	removed, err := u.follows.Delete(ctx, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("unfollow: %w", err)
	}
	if removed {
		metrics.FollowMutationsTotal.WithLabelValues("unfollow").Inc()
		u.invalidateFeed(ctx, followerID)
	}
	return removed, nil
}

func (u *SocialUsecase) IsFollowing(ctx context.Context, a, b int64) (bool, error) {
	return u.follows.Exists(ctx, a, b)
}

func (u *SocialUsecase) IsFollowedBy(ctx context.Context, a, b int64) (bool, error) {
	return u.follows.Exists(ctx, b, a)
}

func (u *SocialUsecase) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	users, err := u.follows.Followers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

func (u *SocialUsecase) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	users, err := u.follows.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}

func (u *SocialUsecase) invalidateFeed(ctx context.Context, userID int64) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, userID); err != nil {
		u.logger.Warn("invalidate feed cache", "user_id", userID, "error", err)
	}
}
