package domain

import (
	"errors"
	"time"
)

var (
	ErrSelfFollow = errors.New("users cannot follow themselves")
	ErrSelfLike   = errors.New("users cannot like their own messages")
)

// Follow is a directed edge: FollowerID observes FollowedID's posts.
// At most one edge exists per ordered pair.
type Follow struct {
	FollowerID int64
	FollowedID int64
	CreatedAt  time.Time
}

// Like marks that a user endorsed a message. At most one edge exists
// per (user, message) pair, and a user never likes their own message.
type Like struct {
	UserID    int64
	MessageID int64
	CreatedAt time.Time
}
