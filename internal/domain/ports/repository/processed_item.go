package repository

import (
	"context"
	"time"
)

// -----------------------------
// Processed items (per user diff set)
// -----------------------------

// ProcessedItemRepository tracks which market-index items a user has already
// been evaluated against, so the radar alerts at most once per (user, item).
type ProcessedItemRepository interface {
	// MarkProcessed records the pair; marking an already-processed pair is a no-op.
	MarkProcessed(ctx context.Context, tx Tx, userID string, itemID int64) error
	IsProcessed(ctx context.Context, tx Tx, userID string, itemID int64) (bool, error)
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	// ClearUser drops the user's whole diff set (used by /reset).
	ClearUser(ctx context.Context, tx Tx, userID string) error
	// DeleteOlderThan prunes entries processed before the cutoff and returns
	// how many rows were removed.
	DeleteOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
