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

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Create runs the owner check and the insert in one transaction. The
// self-like check comes before the duplicate check; the composite primary
// key on (user_id, message_id) is what actually guarantees uniqueness
// under concurrency, so a lost race is reported as "already liked".
func (r *LikeRepository) Create(ctx context.Context, userID, messageID int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin like: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	err = tx.QueryRow(ctx,
		`SELECT user_id FROM messages WHERE id = $1`, messageID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrMessageNotFound
		}
		return false, fmt.Errorf("lookup message owner: %w", err)
	}
	if ownerID == userID {
		return false, domain.ErrSelfLike
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO likes (user_id, message_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, message_id) DO NOTHING`,
		userID, messageID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepository) Delete(ctx context.Context, userID, messageID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND message_id = $2`,
		userID, messageID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM likes WHERE user_id = $1 AND message_id = $2
		 )`,
		userID, messageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("like exists: %w", err)
	}
	return exists, nil
}

func (r *LikeRepository) MessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT message_id FROM likes WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list liked messages: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
