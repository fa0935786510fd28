package application

import (
	"context"
	"fmt"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands. The Telegram
// adapter owns the wording; the facade only returns domain data, so the same
// entry points serve both the bot and the admin API.
type BotFacade struct {
	UserUC  usecase.UserUseCase
	RadarUC usecase.RadarUseCase
	OppUC   usecase.OpportunityUseCase
	StatsUC usecase.StatsUseCase
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	radarUC usecase.RadarUseCase,
	oppUC usecase.OpportunityUseCase,
	statsUC usecase.StatsUseCase,
) *BotFacade {
	return &BotFacade{
		UserUC:  userUC,
		RadarUC: radarUC,
		OppUC:   oppUC,
		StatsUC: statsUC,
	}
}

// HandleStart registers or fetches the user behind /start.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) (*model.User, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, tgID, username)
	if err != nil {
		return nil, fmt.Errorf("register/fetch user: %w", err)
	}
	return u, nil
}

// HandleStatus aggregates everything /status shows.
func (b *BotFacade) HandleStatus(ctx context.Context, tgID int64) (*usecase.UserStatus, error) {
	u, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	st, err := b.StatsUC.UserStatus(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("user status: %w", err)
	}
	return st, nil
}

// HandlePurchases returns the user's newest opportunities, capped at limit.
func (b *BotFacade) HandlePurchases(ctx context.Context, tgID int64, limit int) ([]*model.Opportunity, error) {
	u, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	opps, err := b.OppUC.History(ctx, u.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("opportunity history: %w", err)
	}
	return opps, nil
}

func (b *BotFacade) HandleSetToken(ctx context.Context, tgID int64, token string) error {
	return b.UserUC.SetSteamToken(ctx, tgID, token)
}

func (b *BotFacade) HandleSetMaxPrice(ctx context.Context, tgID int64, cents int) error {
	return b.UserUC.SetMaxPrice(ctx, tgID, cents)
}

// HandleToggleAutoPurchase flips the auto-purchase flag and returns the new state.
func (b *BotFacade) HandleToggleAutoPurchase(ctx context.Context, tgID int64) (*model.User, error) {
	u, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return b.UserUC.SetAutoPurchase(ctx, tgID, !u.AutoPurchase)
}

func (b *BotFacade) HandleStartMonitoring(ctx context.Context, tgID int64) (*model.User, error) {
	return b.UserUC.StartMonitoring(ctx, tgID)
}

func (b *BotFacade) HandleStopMonitoring(ctx context.Context, tgID int64) error {
	return b.UserUC.StopMonitoring(ctx, tgID)
}

// HandleReset zeroes the find counter and diff set after the user confirmed.
func (b *BotFacade) HandleReset(ctx context.Context, tgID int64) (*model.User, error) {
	return b.UserUC.ResetProgress(ctx, tgID)
}

// HandleAdminStats serves the service-wide snapshot behind /stats and the
// admin API.
func (b *BotFacade) HandleAdminStats(ctx context.Context) (*usecase.Stats, error) {
	return b.StatsUC.Summary(ctx)
}
