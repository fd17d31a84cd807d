package usecase

import (
	"context"

	"github.com/perchhq/perch/internal/domain"
)

// FeedCache is the first-page feed cache. Defined here (point of use) so
// tests can inject a fake; implemented by the Redis adapter. A nil
// FeedCache disables caching.
type FeedCache interface {
	GetPage(ctx context.Context, userID int64) ([]domain.Message, bool, error)
	SetPage(ctx context.Context, userID int64, messages []domain.Message) error
	Invalidate(ctx context.Context, userIDs ...int64) error
}
