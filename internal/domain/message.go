package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxMessageRunes bounds message text length in code points, not bytes.
const MaxMessageRunes = 280

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrMessageEmpty    = errors.New("message text is empty")
	ErrMessageTooLong  = errors.New("message text exceeds maximum length")
)

type Message struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// ValidateMessageText checks the length bounds for message text.
func ValidateMessageText(text string) error {
	if text == "" {
		return ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return ErrMessageTooLong
	}
	return nil
}
