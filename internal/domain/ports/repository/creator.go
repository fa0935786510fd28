package repository

import (
	"context"

	"telegram-skin-radar/internal/domain/model"
)

// -----------------------------
// Creators (global)
// -----------------------------

type CreatorRepository interface {
	// Save upserts the creator; a higher ItemCount always wins.
	Save(ctx context.Context, tx Tx, c *model.Creator) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Creator, error)
	CountCreators(ctx context.Context, tx Tx) (int, error)
}
