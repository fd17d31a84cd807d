package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/perchhq/perch/internal/domain"
)

// FeedCache stores the first feed page per user in Redis. Mutations that
// change what a user's feed contains must call Invalidate for the
// affected users; a short TTL bounds the damage of a missed invalidation.
type FeedCache struct {
	cli *redis.Client
	ttl time.Duration
}

// Connect connects to the Redis server and pings it to ensure the
// connection is working.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*FeedCache, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &FeedCache{cli: cli, ttl: ttl}, nil
}

func feedKey(userID int64) string {
	return fmt.Sprintf("feed:%d", userID)
}

// GetPage returns the cached first page for the user. ok is false on a
// cache miss.
func (c *FeedCache) GetPage(ctx context.Context, userID int64) ([]domain.Message, bool, error) {
	raw, err := c.cli.Get(ctx, feedKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get feed page: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, fmt.Errorf("decode feed page: %w", err)
	}
	return messages, true, nil
}

func (c *FeedCache) SetPage(ctx context.Context, userID int64, messages []domain.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode feed page: %w", err)
	}
	if err := c.cli.Set(ctx, feedKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set feed page: %w", err)
	}
	return nil
}

// Invalidate drops the cached pages of the given users.
func (c *FeedCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = feedKey(id)
	}
	if err := c.cli.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate feed pages: %w", err)
	}
	return nil
}

// Ping is used by the health checker.
func (c *FeedCache) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx).Err()
}
