package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/i18n"
	"telegram-skin-radar/internal/infra/logging"
	"telegram-skin-radar/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ RadarUseCase = (*radarUC)(nil)

// CreatorCache is the Redis-backed known-creator set. Membership means the
// creator has already shipped an accepted item, so they can never be a debut.
type CreatorCache interface {
	IsKnown(ctx context.Context, creatorID string) (bool, error)
	MarkKnown(ctx context.Context, creatorID string) error
}

// RadarUseCase runs one scan cycle for a monitoring user.
type RadarUseCase interface {
	ScanForUser(ctx context.Context, user *model.User) error
	MonitoringUsers(ctx context.Context) ([]*model.User, error)
}

type radarUC struct {
	market    adapter.MarketIndex
	users     repository.UserRepository
	processed repository.ProcessedItemRepository
	creators  repository.CreatorRepository
	cache     CreatorCache
	opps      OpportunityUseCase
	bot       adapter.TelegramBotAdapter
	tr        *i18n.Translator
	batch     int
	log       *zerolog.Logger
}

func NewRadarUseCase(
	market adapter.MarketIndex,
	users repository.UserRepository,
	processed repository.ProcessedItemRepository,
	creators repository.CreatorRepository,
	cache CreatorCache,
	opps OpportunityUseCase,
	bot adapter.TelegramBotAdapter,
	translator *i18n.Translator,
	batchSize int,
	logger *zerolog.Logger,
) *radarUC {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &radarUC{
		market:    market,
		users:     users,
		processed: processed,
		creators:  creators,
		cache:     cache,
		opps:      opps,
		bot:       bot,
		tr:        translator,
		batch:     batchSize,
		log:       logger,
	}
}

func (r *radarUC) MonitoringUsers(ctx context.Context) ([]*model.User, error) {
	return r.users.FindMonitoring(ctx, repository.NoTX)
}

// ScanForUser pulls the newest listings from the market index and evaluates
// each unseen one against the user's filters. Items are marked processed
// before evaluation so a crash mid-cycle never double-alerts. When the find
// allowance runs out, monitoring is switched off and the user told once.
func (r *radarUC) ScanForUser(ctx context.Context, user *model.User) error {
	defer logging.TraceDuration(r.log, "RadarUC.ScanForUser")()
	metrics.IncScanCycle()

	ctx = logging.WithUserID(ctx, user.ID)
	log := logging.With(ctx, r.log)

	items, err := r.market.LatestItems(ctx, r.batch)
	if err != nil {
		log.Warn().Err(err).Str("index", r.market.Name()).Msg("latest items fetch failed")
		return err
	}

	now := time.Now().UTC()
	maxAge := user.MaxItemAge()
	seen := 0
	for _, item := range items {
		if user.LimitReached() {
			break
		}
		if item == nil || item.ID == 0 {
			continue
		}
		done, err := r.processed.IsProcessed(ctx, repository.NoTX, user.ID, item.ID)
		if err != nil {
			log.Warn().Err(err).Int64("item_id", item.ID).Msg("processed lookup failed")
			continue
		}
		if done {
			continue
		}
		if err := r.processed.MarkProcessed(ctx, repository.NoTX, user.ID, item.ID); err != nil {
			log.Warn().Err(err).Int64("item_id", item.ID).Msg("failed to mark item processed")
			continue
		}
		seen++

		if !item.IsAccepted || item.CreatorID == 0 {
			continue
		}
		if !item.RecentWithin(maxAge, now) {
			continue
		}
		first, err := r.isFirstTimeCreator(ctx, item)
		if err != nil {
			log.Warn().Err(err).Int64("creator_id", item.CreatorID).Msg("creator check failed")
			continue
		}
		if !first {
			continue
		}

		log.Info().
			Int64("item_id", item.ID).
			Str("item", item.Name).
			Int64("creator_id", item.CreatorID).
			Int64("tg_id", user.TelegramID).
			Msg("first-time creator hit")
		if _, err := r.opps.Record(ctx, user, item); err != nil {
			log.Error().Err(err).Int64("item_id", item.ID).Msg("failed to record opportunity")
		}
	}
	metrics.AddItemsProcessed(seen)

	if user.LimitReached() && user.Monitoring {
		user.Monitoring = false
		// Flip the flag on the stored row rather than saving the snapshot; a
		// /stop issued mid-cycle already switched it off and gets no second
		// notice.
		changed, err := r.users.SetMonitoring(ctx, repository.NoTX, user.ID, false)
		if err != nil {
			return err
		}
		if changed {
			if err := r.bot.SendMessage(ctx, user.TelegramID,
				r.tr.T("monitor_finished", user.FoundCount)); err != nil {
				log.Error().Err(err).Int64("tg_id", user.TelegramID).Msg("failed to send finish notice")
			}
		}
	}
	return nil
}

// isFirstTimeCreator decides whether a creator has never had an accepted item
// before this one. Lookups fail open: a flaky index must not suppress alerts.
func (r *radarUC) isFirstTimeCreator(ctx context.Context, item *model.Item) (bool, error) {
	id := model.CreatorKey(item.CreatorID)

	known, err := r.cache.IsKnown(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Str("creator_id", id).Msg("creator cache lookup failed")
	} else if known {
		return false, nil
	}

	creator, err := r.creators.FindByID(ctx, repository.NoTX, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if creator != nil && creator.ItemCount > 1 {
		r.markKnown(ctx, id)
		return false, nil
	}

	exists, err := r.market.ProfileExists(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Str("creator_id", id).Msg("profile check failed, assuming first-timer")
		return true, nil
	}
	if !exists {
		return true, nil
	}

	count, err := r.market.CreatorItemCount(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Str("creator_id", id).Msg("item count failed, assuming first-timer")
		return true, nil
	}
	if count > 1 {
		c := model.NewCreator(id, item.CreatorName, count)
		if err := r.creators.Save(ctx, repository.NoTX, c); err != nil {
			r.log.Warn().Err(err).Str("creator_id", id).Msg("failed to persist creator count")
		}
		r.markKnown(ctx, id)
		return false, nil
	}
	return true, nil
}

func (r *radarUC) markKnown(ctx context.Context, id string) {
	if err := r.cache.MarkKnown(ctx, id); err != nil {
		r.log.Warn().Err(err).Str("creator_id", id).Msg("failed to cache known creator")
	}
}
