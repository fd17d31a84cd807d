package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/perchhq/perch/internal/domain"
)

const userColumns = `id, username, email, password_hash, bio, location,
	       image_url, header_image_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, image_url, header_image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		username, email, passwordHash,
		domain.DefaultImageURL, domain.DefaultHeaderImageURL,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, mapUserUniqueViolation(err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET    username         = $2,
		       email            = $3,
		       bio              = $4,
		       location         = $5,
		       image_url        = $6,
		       header_image_url = $7,
		       updated_at       = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.Bio, user.Location,
		user.ImageURL, user.HeaderImageURL,
	)

	updated, err := scanUser(row)
	if err != nil {
		return nil, mapUserUniqueViolation(err)
	}
	return updated, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete fans out the cascade explicitly rather than leaning on FK
// ON DELETE clauses, so the ordering is fixed: likes on the user's
// messages, the messages, likes placed by the user, follow edges in
// either role, the reauth token, and finally the user row.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback(ctx)

	steps := []string{
		`DELETE FROM likes WHERE message_id IN (SELECT id FROM messages WHERE user_id = $1)`,
		`DELETE FROM messages WHERE user_id = $1`,
		`DELETE FROM likes WHERE user_id = $1`,
		`DELETE FROM follows WHERE follower_id = $1 OR followed_id = $1`,
		`DELETE FROM reauth_tokens WHERE user_id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return fmt.Errorf("cascade delete user: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, q string, limit int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1 = '' OR username ILIKE '%' || $1 || '%'
		ORDER BY username ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
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

// mapUserUniqueViolation turns a unique-constraint error from the users
// table into the matching domain error, identified by constraint name.
func mapUserUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == "users_email_key" {
			return domain.ErrEmailTaken
		}
		return domain.ErrUsernameTaken
	}
	return err
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.Location,
		&u.ImageURL, &u.HeaderImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
