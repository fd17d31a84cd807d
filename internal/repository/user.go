package repository

import (
	"context"

	"github.com/perchhq/perch/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete removes the user and everything referencing them in one
	// transaction: likes on their messages, their messages, likes they
	// placed, follow edges in either role, and any reauth token.
	Delete(ctx context.Context, id int64) error

	// Search lists users whose username contains q. Empty q lists all,
	// bounded by limit.
	Search(ctx context.Context, q string, limit int) ([]domain.User, error)
}
