package repository

import "context"

type LikeRepository interface {
	// Create inserts the edge after verifying, inside the same
	// transaction, that the message exists and is not owned by userID.
	// created is false when the edge already existed. Returns
	// domain.ErrMessageNotFound or domain.ErrSelfLike on the
	// respective precondition failures.
	Create(ctx context.Context, userID, messageID int64) (created bool, err error)

	// Delete removes the edge. removed is false when no edge existed.
	Delete(ctx context.Context, userID, messageID int64) (removed bool, err error)

	Exists(ctx context.Context, userID, messageID int64) (bool, error)

	// MessageIDs lists the ids of all messages userID has liked.
	MessageIDs(ctx context.Context, userID int64) ([]int64, error)
}
