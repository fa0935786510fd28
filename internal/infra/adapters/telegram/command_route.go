package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/logging"
	"telegram-skin-radar/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":     r.handleStartCommand,
		"help":      r.handleHelpCommand,
		"status":    r.handleStatusCommand,
		"settoken":  r.handleSetTokenCommand,
		"monitor":   r.handleMonitorCommand,
		"stop":      r.handleStopCommand,
		"purchases": r.handlePurchasesCommand,
		"settings":  r.handleSettingsCommand,
		"reset":     r.handleResetCommand,

		"stats": r.adminOnly(r.handleStatsCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_unauthorized"))
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	user, err := r.facade.HandleStart(ctx, message.From.ID, message.From.UserName)
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}

	name := message.From.UserName
	if name == "" {
		name = message.From.FirstName
	}
	text := r.translator.T("welcome_message",
		name,
		"📡", r.monitoringLabel(user),
		"🔑", r.tokenLabel(user),
		r.autoPurchaseLabel(user),
		model.FormatPriceUSD(user.MaxPriceCents),
		user.FoundCount, user.MaxFinds,
	)
	return r.sendMainMenu(ctx, message.Chat.ID, text, user)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID,
		r.translator.T("help_message", r.pollInterval.String(), model.DefaultMaxFinds))
}

func (r *RealTelegramBotAdapter) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendStatus(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) sendStatus(ctx context.Context, chatID, tgID int64) error {
	info, err := r.facade.HandleStatus(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
		}
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	u := info.User

	next := r.translator.T("status_next_start")
	switch {
	case !u.HasSteamToken():
		next = r.translator.T("status_next_set_token")
	case u.LimitReached():
		next = r.translator.T("status_next_reset")
	case u.Monitoring:
		next = r.translator.T("status_next_waiting")
	}

	text := r.translator.T("status_message",
		r.monitoringLabel(u),
		r.tokenLabel(u),
		u.MaxFinds,
		u.FoundCount, u.MaxFinds,
		info.Finds24h,
		info.FindsTotal,
		info.Processed,
		r.pollInterval.String(),
		info.KnownCreators,
		next,
	)
	return r.sendMainMenu(ctx, chatID, text, u)
}

func (r *RealTelegramBotAdapter) handleSetTokenCommand(ctx context.Context, message *tgbotapi.Message) error {
	token := strings.TrimSpace(message.CommandArguments())
	if token != "" {
		return r.saveSteamToken(ctx, message.Chat.ID, message.From.ID, token)
	}
	state := &repository.ConversationState{Step: repository.StateAwaitingSteamToken}
	if err := r.states.SetState(ctx, message.From.ID, state); err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("settoken_prompt"))
}

func (r *RealTelegramBotAdapter) saveSteamToken(ctx context.Context, chatID, tgID int64, token string) error {
	r.log.Debug().Int64("tg_id", tgID).Str("token", logging.Redact(token, false)).Msg("steam token received")
	if err := r.facade.HandleSetToken(ctx, tgID, token); err != nil {
		if errors.Is(err, domain.ErrInvalidSteamToken) {
			return r.SendMessage(ctx, chatID, r.translator.T("settoken_invalid"))
		}
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, chatID, r.translator.T("settoken_saved"))
}

func (r *RealTelegramBotAdapter) handleMonitorCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.startMonitoring(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) startMonitoring(ctx context.Context, chatID, tgID int64) error {
	user, err := r.facade.HandleStartMonitoring(ctx, tgID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSteamToken):
			return r.SendMessage(ctx, chatID, r.translator.T("monitor_no_token"))
		case errors.Is(err, domain.ErrAlreadyMonitoring):
			return r.SendMessage(ctx, chatID, r.translator.T("monitor_already"))
		case errors.Is(err, domain.ErrFindLimitReached):
			u, uerr := r.facade.UserUC.GetByTelegramID(ctx, tgID)
			found := model.DefaultMaxFinds
			if uerr == nil {
				found = u.FoundCount
			}
			return r.SendMessage(ctx, chatID, r.translator.T("monitor_limit_reached", found))
		default:
			return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
		}
	}
	return r.SendMessage(ctx, chatID,
		r.translator.T("monitor_started", user.FoundCount, user.MaxFinds))
}

func (r *RealTelegramBotAdapter) handleStopCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.stopMonitoring(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) stopMonitoring(ctx context.Context, chatID, tgID int64) error {
	if err := r.facade.HandleStopMonitoring(ctx, tgID); err != nil {
		if errors.Is(err, domain.ErrNotMonitoring) {
			return r.SendMessage(ctx, chatID, r.translator.T("monitor_not_running"))
		}
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, chatID, r.translator.T("monitor_stopped"))
}

func (r *RealTelegramBotAdapter) handlePurchasesCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendPurchases(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) sendPurchases(ctx context.Context, chatID, tgID int64) error {
	opps, err := r.facade.HandlePurchases(ctx, tgID, 10)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	if len(opps) == 0 {
		return r.SendMessage(ctx, chatID, r.translator.T("purchases_empty"))
	}

	var b strings.Builder
	b.WriteString(r.translator.T("purchases_header"))
	b.WriteString("\n")
	for i, o := range opps {
		icon := "🔍"
		if o.Purchased {
			icon = "✅"
		}
		price := "price unknown"
		if o.PriceCents > 0 {
			price = model.FormatPriceUSD(o.PriceCents)
		}
		fmt.Fprintf(&b, "\n%d. %s *%s*\n   %s • %s", i+1, icon, o.ItemName, price,
			o.CreatedAt.Format("Jan 02 15:04"))
		if !o.Purchased && o.PurchaseError != "" {
			fmt.Fprintf(&b, "\n   ⚠️ %s", o.PurchaseError)
		}
	}
	return r.SendMessage(ctx, chatID, b.String())
}

func (r *RealTelegramBotAdapter) handleSettingsCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendSettingsMenu(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) handleResetCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendResetPrompt(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	stats, err := r.facade.HandleAdminStats(ctx)
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_stats",
		stats.Users, stats.Monitoring,
		stats.Opportunities, stats.Opportunities24h,
		stats.Creators))
}

// handleConversationInput consumes free text while a multi-step conversation
// is pending.
func (r *RealTelegramBotAdapter) handleConversationInput(ctx context.Context, message *tgbotapi.Message, state *repository.ConversationState) error {
	tgID := message.From.ID
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case repository.StateAwaitingSteamToken:
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to clear conversation state")
		}
		return r.saveSteamToken(ctx, message.Chat.ID, tgID, text)

	case repository.StateAwaitingMaxPrice:
		cents, ok := parsePriceCents(text)
		if !ok {
			// Keep waiting, the user can just send a corrected value.
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("maxprice_invalid"))
		}
		if err := r.facade.HandleSetMaxPrice(ctx, tgID, cents); err != nil {
			if errors.Is(err, domain.ErrPriceOutOfRange) {
				return r.SendMessage(ctx, message.Chat.ID, r.translator.T("maxprice_out_of_range"))
			}
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
		}
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to clear conversation state")
		}
		return r.SendMessage(ctx, message.Chat.ID,
			r.translator.T("maxprice_saved", model.FormatPriceUSD(cents)))

	default:
		return r.states.ClearState(ctx, tgID)
	}
}

// parsePriceCents turns user input like "5", "10.50" or "$25" into cents.
func parsePriceCents(text string) (int, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return int(math.Round(v * 100)), true
}

func (r *RealTelegramBotAdapter) monitoringLabel(u *model.User) string {
	if u.Monitoring {
		return r.translator.T("status_active")
	}
	return r.translator.T("status_stopped")
}

func (r *RealTelegramBotAdapter) tokenLabel(u *model.User) string {
	if u.HasSteamToken() {
		return r.translator.T("status_token_set")
	}
	return r.translator.T("status_token_missing")
}

func (r *RealTelegramBotAdapter) autoPurchaseLabel(u *model.User) string {
	if u.AutoPurchase {
		return r.translator.T("status_enabled")
	}
	return r.translator.T("status_disabled")
}
