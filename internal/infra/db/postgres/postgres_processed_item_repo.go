package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-skin-radar/internal/domain/ports/repository"
)

var _ repository.ProcessedItemRepository = (*PostgresProcessedItemRepo)(nil)

type PostgresProcessedItemRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProcessedItemRepo(pool *pgxpool.Pool) *PostgresProcessedItemRepo {
	return &PostgresProcessedItemRepo{pool: pool}
}

func (r *PostgresProcessedItemRepo) MarkProcessed(ctx context.Context, tx repository.Tx, userID string, itemID int64) error {
	// The composite PK makes re-marking a no-op.
	const q = `
INSERT INTO processed_items (user_id, item_id, processed_at)
VALUES ($1,$2,$3) ON CONFLICT (user_id, item_id) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q, userID, itemID, time.Now().UTC())
	return err
}

func (r *PostgresProcessedItemRepo) IsProcessed(ctx context.Context, tx repository.Tx, userID string, itemID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM processed_items WHERE user_id=$1 AND item_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, itemID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresProcessedItemRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM processed_items WHERE user_id=$1;`, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresProcessedItemRepo) ClearUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM processed_items WHERE user_id=$1;`, userID)
	return err
}

func (r *PostgresProcessedItemRepo) DeleteOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM processed_items WHERE processed_at < $1;`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
