package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/header-default.jpg"
)

type User struct {
	ID       int64
	Username string
	Email    string

	// Bcrypt hash of the password. Plaintext is never persisted or logged.
	PasswordHash string

	Bio            *string
	Location       *string
	ImageURL       string
	HeaderImageURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}
