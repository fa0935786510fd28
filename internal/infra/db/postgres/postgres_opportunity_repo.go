package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/repository"
)

var _ repository.OpportunityRepository = (*PostgresOpportunityRepo)(nil)

type PostgresOpportunityRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOpportunityRepo(pool *pgxpool.Pool) *PostgresOpportunityRepo {
	return &PostgresOpportunityRepo{pool: pool}
}

func (r *PostgresOpportunityRepo) Save(ctx context.Context, tx repository.Tx, o *model.Opportunity) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO opportunities (
  id, user_id, item_id, item_name, creator_id, creator_name,
  price_cents, purchased, purchase_error, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.UserID, o.ItemID, o.ItemName, o.CreatorID, o.CreatorName,
		o.PriceCents, o.Purchased, o.PurchaseError, o.CreatedAt)
	return err
}

func (r *PostgresOpportunityRepo) ListRecentByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Opportunity, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, item_id, item_name, creator_id, creator_name,
       price_cents, purchased, purchase_error, created_at
  FROM opportunities WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;
`
	rows, err := querySQL(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(&o.ID, &o.UserID, &o.ItemID, &o.ItemName, &o.CreatorID, &o.CreatorName,
			&o.PriceCents, &o.Purchased, &o.PurchaseError, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *PostgresOpportunityRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	return r.scanCount(ctx, tx, `SELECT COUNT(*) FROM opportunities WHERE user_id=$1;`, userID)
}

func (r *PostgresOpportunityRepo) CountByUserSince(ctx context.Context, tx repository.Tx, userID string, since time.Time) (int, error) {
	return r.scanCount(ctx, tx, `SELECT COUNT(*) FROM opportunities WHERE user_id=$1 AND created_at > $2;`, userID, since)
}

func (r *PostgresOpportunityRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	return r.scanCount(ctx, tx, `SELECT COUNT(*) FROM opportunities;`)
}

func (r *PostgresOpportunityRepo) CountAllSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return r.scanCount(ctx, tx, `SELECT COUNT(*) FROM opportunities WHERE created_at > $1;`, since)
}

func (r *PostgresOpportunityRepo) scanCount(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
