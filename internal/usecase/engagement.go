package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
)

type EngagementUsecase struct {
	likes  repository.LikeRepository
	logger *slog.Logger
}

func NewEngagementUsecase(likes repository.LikeRepository, logger *slog.Logger) *EngagementUsecase {
	return &EngagementUsecase{
		likes:  likes,
		logger: logger.With("component", "engagement"),
	}
}

// Like records the edge. The repository checks, inside one transaction,
// that the message exists and is not the caller's own; repeating an
// existing like reports alreadyLiked rather than failing.
func (u *EngagementUsecase) Like(ctx context.Context, userID, messageID int64) (alreadyLiked bool, err error) {
	created, err := u.likes.Create(ctx, userID, messageID)
	if err != nil {
		return false, err
	}
	if created {
		metrics.LikeMutationsTotal.WithLabelValues("like").Inc()
	}
	return !created, nil
}

func (u *EngagementUsecase) Unlike(ctx context.Context, userID, messageID int64) (wasLiked bool, err error) {
	removed, err := u.likes.Delete(ctx, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("unlike: %w", err)
	}
	if removed {
		metrics.LikeMutationsTotal.WithLabelValues("unlike").Inc()
	}
	return removed, nil
}

func (u *EngagementUsecase) HasLiked(ctx context.Context, userID, messageID int64) (bool, error) {
	return u.likes.Exists(ctx, userID, messageID)
}

func (u *EngagementUsecase) LikedMessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := u.likes.MessageIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return ids, nil
}
