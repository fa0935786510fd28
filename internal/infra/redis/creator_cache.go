package redis

import (
	"context"
	"errors"

	"telegram-skin-radar/internal/infra/metrics"
)

// CreatorCache keeps the set of creator IDs already verified as NOT
// first-time, so the radar can skip the market-index profile lookup. The set
// is deliberately unexpiring: once a creator has more than one accepted item
// that fact never changes.
type CreatorCache struct {
	client RedisClient
}

const knownCreatorsKey = "known_creators"

func NewCreatorCache(client RedisClient) *CreatorCache {
	return &CreatorCache{client: client}
}

func (c *CreatorCache) MarkKnown(ctx context.Context, creatorID string) error {
	return c.client.SAdd(ctx, knownCreatorsKey, creatorID)
}

func (c *CreatorCache) IsKnown(ctx context.Context, creatorID string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, knownCreatorsKey, creatorID)
	if err != nil {
		if errors.Is(err, Nil) {
			return false, nil
		}
		return false, err
	}
	if ok {
		metrics.IncCacheRequest("creator", "hit")
	} else {
		metrics.IncCacheRequest("creator", "miss")
	}
	return ok, nil
}
