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

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, userID int64, text string) (*domain.Message, error) {
	query := `
		INSERT INTO messages (user_id, text)
		VALUES ($1, $2)
		RETURNING id, user_id, text, created_at`

	created, err := scanMessage(r.pool.QueryRow(ctx, query, userID, text))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return created, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `SELECT id, user_id, text, created_at FROM messages WHERE id = $1`
	return scanMessage(r.pool.QueryRow(ctx, query, id))
}

// Delete is owner-scoped; a mismatched owner looks the same as a missing
// message. The message's like edges go in the same transaction.
func (r *MessageRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin delete message: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM likes WHERE message_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete message likes: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM messages WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Roll back so the like edges of someone else's message survive.
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit delete message: %w", err)
	}
	return true, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, user_id, text, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	return r.queryMessages(ctx, query, userID, limit)
}

func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, user_id, text, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	return r.queryMessages(ctx, query, limit)
}

func (r *MessageRepository) Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT id, user_id, text, created_at
		FROM messages
		WHERE user_id = $1
		   OR user_id IN (SELECT followed_id FROM follows WHERE follower_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.queryMessages(ctx, query, userID, limit, offset)
}

func (r *MessageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.UserID, &m.Text, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &m, nil
}
