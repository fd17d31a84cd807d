package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/perchhq/perch/internal/domain"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

// Create relies on the composite primary key for race safety: two
// concurrent inserts for the same pair produce exactly one edge, and the
// loser sees a zero-row result rather than an error.
func (r *FollowRepository) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO follows (follower_id, followed_id)
		 VALUES ($1, $2)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				return false, domain.ErrUserNotFound
			case pgerrcode.UniqueViolation:
				return false, nil
			}
		}
		return false, fmt.Errorf("insert follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
		 )`,
		followerID, followedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("follow exists: %w", err)
	}
	return exists, nil
}

// Columns qualified with the users alias; follows carries its own
// created_at and would make the bare names ambiguous.
const joinedUserColumns = `u.id, u.username, u.email, u.password_hash, u.bio,
	       u.location, u.image_url, u.header_image_url, u.created_at, u.updated_at`

func (r *FollowRepository) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	query := `
		SELECT ` + joinedUserColumns + `
		FROM users u
		JOIN follows f ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY f.created_at DESC`
	return r.queryUsers(ctx, query, userID)
}

func (r *FollowRepository) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	query := `
		SELECT ` + joinedUserColumns + `
		FROM users u
		JOIN follows f ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC`
	return r.queryUsers(ctx, query, userID)
}

func (r *FollowRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query follow users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
