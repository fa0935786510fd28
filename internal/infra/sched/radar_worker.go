package sched

import (
	"context"
	"time"

	"telegram-skin-radar/internal/infra/worker"
	"telegram-skin-radar/internal/usecase"

	"github.com/rs/zerolog"
)

// RadarWorker drives the scan loop: on every tick it loads all monitoring
// users and fans one scan task per user out onto the shared pool.
type RadarWorker struct {
	interval time.Duration
	radarUC  usecase.RadarUseCase
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewRadarWorker(interval time.Duration, radarUC usecase.RadarUseCase, pool *worker.Pool, logger *zerolog.Logger) *RadarWorker {
	compLog := logger.With().Str("component", "RadarWorker").Logger()
	return &RadarWorker{
		interval: interval,
		radarUC:  radarUC,
		pool:     pool,
		log:      &compLog,
	}
}

func (w *RadarWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting radar worker")
	// Run once on startup, then on every tick
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping radar worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *RadarWorker) runCycle(ctx context.Context) {
	users, err := w.radarUC.MonitoringUsers(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to load monitoring users")
		return
	}
	if len(users) == 0 {
		return
	}
	w.log.Debug().Int("users", len(users)).Msg("scan cycle")

	for _, u := range users {
		u := u
		err := w.pool.Submit(func(taskCtx context.Context) error {
			return w.radarUC.ScanForUser(taskCtx, u)
		})
		if err != nil {
			// Saturated pool: skip this user for the cycle, the next tick
			// picks them up again.
			w.log.Warn().Err(err).Int64("tg_id", u.TelegramID).Msg("scan task dropped")
		}
	}
}
