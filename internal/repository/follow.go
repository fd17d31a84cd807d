package repository

import (
	"context"

	"github.com/perchhq/perch/internal/domain"
)

type FollowRepository interface {
	// Create inserts the edge. created is false when the edge already
	// existed; the composite primary key makes the insert race-safe.
	// Returns domain.ErrUserNotFound if either endpoint is missing.
	Create(ctx context.Context, followerID, followedID int64) (created bool, err error)

	// Delete removes the edge. removed is false when no edge existed.
	Delete(ctx context.Context, followerID, followedID int64) (removed bool, err error)

	Exists(ctx context.Context, followerID, followedID int64) (bool, error)

	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	Following(ctx context.Context, userID int64) ([]domain.User, error)
}
