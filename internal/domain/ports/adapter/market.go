package adapter

import (
	"context"

	"telegram-skin-radar/internal/domain/model"
)

// MarketIndex is the hex port for the market-index API (SCMM).
type MarketIndex interface {
	Name() string

	// LatestItems returns up to count items sorted by creation time, newest first.
	LatestItems(ctx context.Context, count int) ([]*model.Item, error)
	// CreatorItemCount returns the total number of items a creator has on the index.
	CreatorItemCount(ctx context.Context, creatorID string) (int, error)
	// ProfileExists reports whether the creator has a profile on the index.
	// A missing profile usually means a brand-new workshop author.
	ProfileExists(ctx context.Context, creatorID string) (bool, error)
}
