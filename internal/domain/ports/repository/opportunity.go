package repository

import (
	"context"
	"time"

	"telegram-skin-radar/internal/domain/model"
)

// -----------------------------
// Opportunities (per user)
// -----------------------------

type OpportunityRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Opportunity) error
	// ListRecentByUser returns the newest opportunities first, capped at limit.
	ListRecentByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Opportunity, error)
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	CountByUserSince(ctx context.Context, tx Tx, userID string, since time.Time) (int, error)
	CountAll(ctx context.Context, tx Tx) (int, error)
	CountAllSince(ctx context.Context, tx Tx, since time.Time) (int, error)
}
