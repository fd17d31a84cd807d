package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/repository"
)

type MessageUsecase struct {
	messages repository.MessageRepository
	follows  repository.FollowRepository
	cache    FeedCache
	logger   *slog.Logger
}

func NewMessageUsecase(messages repository.MessageRepository, follows repository.FollowRepository, cache FeedCache, logger *slog.Logger) *MessageUsecase {
	return &MessageUsecase{
		messages: messages,
		follows:  follows,
		cache:    cache,
		logger:   logger.With("component", "message"),
	}
}

func (u *MessageUsecase) Post(ctx context.Context, userID int64, text string) (*domain.Message, error) {
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, err
	}

	message, err := u.messages.Create(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	u.invalidateAudience(ctx, userID)
	return message, nil
}

func (u *MessageUsecase) Get(ctx context.Context, id int64) (*domain.Message, error) {
	return u.messages.GetByID(ctx, id)
}

// Delete is owner-scoped: a message id that exists but belongs to someone
// else reads as not found, the same as a missing id.
func (u *MessageUsecase) Delete(ctx context.Context, id, ownerID int64) error {
	removed, err := u.messages.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if !removed {
		return domain.ErrMessageNotFound
	}

	u.invalidateAudience(ctx, ownerID)
	return nil
}

func (u *MessageUsecase) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	messages, err := u.messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}
	return messages, nil
}

func (u *MessageUsecase) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	messages, err := u.messages.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	return messages, nil
}

// invalidateAudience drops the cached feed page of the author and of
// everyone following the author: those are the feeds whose contents a
// post or delete just changed.
func (u *MessageUsecase) invalidateAudience(ctx context.Context, authorID int64) {
	if u.cache == nil {
		return
	}

	ids := []int64{authorID}
	followers, err := u.follows.Followers(ctx, authorID)
	if err != nil {
		u.logger.Warn("list followers for cache invalidation", "error", err)
	}
	for _, f := range followers {
		ids = append(ids, f.ID)
	}

	if err := u.cache.Invalidate(ctx, ids...); err != nil {
		u.logger.Warn("invalidate feed cache", "error", err)
	}
}
