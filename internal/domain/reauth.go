package domain

import (
	"errors"
	"time"
)

var (
	ErrReauthMissing = errors.New("reauthentication required")
	ErrReauthExpired = errors.New("reauthentication window has expired")
)

// ReauthToken is short-lived proof of recent password re-entry, required
// before sensitive identity mutations. One token exists per user at a time;
// issuing a new one replaces the previous.
type ReauthToken struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is past its window at the given instant.
func (t *ReauthToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
