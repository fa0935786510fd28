package sched

import (
	"context"
	"time"

	"telegram-skin-radar/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// RetentionWorker prunes old processed-item rows once a day so the diff sets
// don't grow without bound.
type RetentionWorker struct {
	interval  time.Duration
	retention time.Duration
	processed repository.ProcessedItemRepository
	log       *zerolog.Logger
}

func NewRetentionWorker(retention time.Duration, processed repository.ProcessedItemRepository, logger *zerolog.Logger) *RetentionWorker {
	compLog := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval:  24 * time.Hour,
		retention: retention,
		processed: processed,
		log:       &compLog,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("retention", w.retention).Msg("Starting retention worker")
	w.prune(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *RetentionWorker) prune(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)
	n, err := w.processed.DeleteOlderThan(ctx, repository.NoTX, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("retention prune failed")
		return
	}
	if n > 0 {
		w.log.Info().Int64("rows", n).Time("cutoff", cutoff).Msg("pruned processed items")
	}
}
