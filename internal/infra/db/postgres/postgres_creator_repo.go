package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/repository"
)

var _ repository.CreatorRepository = (*PostgresCreatorRepo)(nil)

type PostgresCreatorRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCreatorRepo(pool *pgxpool.Pool) *PostgresCreatorRepo {
	return &PostgresCreatorRepo{pool: pool}
}

func (r *PostgresCreatorRepo) Save(ctx context.Context, tx repository.Tx, c *model.Creator) error {
	const q = `
INSERT INTO creators (id, name, first_seen, item_count)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  name=$2, item_count=GREATEST(creators.item_count, $4);
`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.FirstSeen, c.ItemCount)
	return err
}

func (r *PostgresCreatorRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Creator, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT id, name, first_seen, item_count FROM creators WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	var c model.Creator
	if err := row.Scan(&c.ID, &c.Name, &c.FirstSeen, &c.ItemCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCreatorRepo) CountCreators(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM creators;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count creators: %w", err)
	}
	return n, nil
}
