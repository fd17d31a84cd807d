package repository

import (
	"context"

	"github.com/perchhq/perch/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, userID int64, text string) (*domain.Message, error)
	GetByID(ctx context.Context, id int64) (*domain.Message, error)

	// Delete removes the message and its like edges in one transaction.
	// It is scoped to the owner; removed reports whether a row matched.
	Delete(ctx context.Context, id, ownerID int64) (removed bool, err error)

	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)

	// Feed returns messages owned by userID or by anyone userID follows,
	// newest first, ties broken by id descending.
	Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error)
}
