package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
)

const DefaultFeedPageSize = 50

// FeedUsecase assembles a user's timeline: their own messages plus those
// of everyone they follow, newest first. Read-only.
type FeedUsecase struct {
	messages repository.MessageRepository
	cache    FeedCache
	logger   *slog.Logger
	pageSize int
}

func NewFeedUsecase(messages repository.MessageRepository, cache FeedCache, logger *slog.Logger, pageSize int) *FeedUsecase {
	if pageSize <= 0 {
		pageSize = DefaultFeedPageSize
	}
	return &FeedUsecase{
		messages: messages,
		cache:    cache,
		logger:   logger.With("component", "feed"),
		pageSize: pageSize,
	}
}

// Feed returns up to limit messages starting at offset, ordered by
// (created_at, id) descending. limit is clamped to the configured page
// size. Only the first page is cache-eligible.
func (u *FeedUsecase) Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 || limit > u.pageSize {
		limit = u.pageSize
	}
	if offset < 0 {
		offset = 0
	}

	if u.cache != nil && offset == 0 {
		return u.firstPage(ctx, userID, limit)
	}
	return u.query(ctx, userID, limit, offset)
}

// firstPage serves offset zero through the cache: a full page is fetched
// and stored, then trimmed to the caller's limit.
func (u *FeedUsecase) firstPage(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	cached, ok, err := u.cache.GetPage(ctx, userID)
	if err != nil {
		u.logger.Warn("feed cache read", "user_id", userID, "error", err)
	}
	if ok {
		metrics.FeedCacheTotal.WithLabelValues("hit").Inc()
		return trim(cached, limit), nil
	}
	metrics.FeedCacheTotal.WithLabelValues("miss").Inc()

	page, err := u.query(ctx, userID, u.pageSize, 0)
	if err != nil {
		return nil, err
	}
	if err := u.cache.SetPage(ctx, userID, page); err != nil {
		u.logger.Warn("feed cache write", "user_id", userID, "error", err)
	}
	return trim(page, limit), nil
}

func (u *FeedUsecase) query(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error) {
	start := time.Now()
	messages, err := u.messages.Feed(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("assemble feed: %w", err)
	}
	metrics.FeedQueryDuration.Observe(time.Since(start).Seconds())
	return messages, nil
}

func trim(messages []domain.Message, limit int) []domain.Message {
	if len(messages) > limit {
		return messages[:limit]
	}
	return messages
}
