package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/domain/ports/repository"
)

type cbHandler func(ctx context.Context, chatID, fromID int64, data string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

// Exact-match callbacks
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:menu":      r.menuCBRoute,
		"cmd:status":    r.statusCBRoute,
		"cmd:purchases": r.purchasesCBRoute,
		"cmd:settoken":  r.setTokenCBRoute,
		"cmd:settings":  r.settingsCBRoute,
		"cmd:help":      r.helpCBRoute,

		"monitor:start": r.monitorStartCBRoute,
		"monitor:stop":  r.monitorStopCBRoute,

		"settings:auto":     r.autoPurchaseToggleCBRoute,
		"settings:maxprice": r.maxPriceCBRoute,
		"settings:reset":    r.resetAskCBRoute,

		"reset:cancel": r.resetCancelCBRoute,
	}
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: "reset:confirm:", Fn: r.resetConfirmCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	// Acknowledge immediately so the client stops its spinner.
	if _, err := r.bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("failed to answer callback query")
	}
	if q.Message == nil {
		return nil
	}
	chatID := q.Message.Chat.ID
	fromID := q.From.ID
	data := q.Data

	if handler, ok := r.cbRoutes()[data]; ok {
		return handler(ctx, chatID, fromID, data)
	}
	for _, route := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, route.Prefix) {
			return route.Fn(ctx, chatID, fromID, data)
		}
	}
	r.log.Debug().Str("data", data).Msg("unknown callback data")
	return nil
}

func (r *RealTelegramBotAdapter) menuCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	user, err := r.facade.UserUC.GetByTelegramID(ctx, fromID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.sendMainMenu(ctx, chatID, r.translator.T("menu_status"), user)
}

func (r *RealTelegramBotAdapter) statusCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.sendStatus(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) purchasesCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.sendPurchases(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) setTokenCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	state := &repository.ConversationState{Step: repository.StateAwaitingSteamToken}
	if err := r.states.SetState(ctx, fromID, state); err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, chatID, r.translator.T("settoken_prompt"))
}

func (r *RealTelegramBotAdapter) settingsCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.sendSettingsMenu(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) helpCBRoute(ctx context.Context, chatID, _ int64, _ string) error {
	return r.SendMessage(ctx, chatID,
		r.translator.T("help_message", r.pollInterval.String(), model.DefaultMaxFinds))
}

func (r *RealTelegramBotAdapter) monitorStartCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.startMonitoring(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) monitorStopCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.stopMonitoring(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) autoPurchaseToggleCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	user, err := r.facade.HandleToggleAutoPurchase(ctx, fromID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	state := r.translator.T("status_disabled")
	if user.AutoPurchase {
		state = r.translator.T("status_enabled")
	}
	if err := r.SendMessage(ctx, chatID, r.translator.T("settings_auto_toggled", state)); err != nil {
		return err
	}
	return r.sendSettingsMenu(ctx, chatID, fromID)
}

func (r *RealTelegramBotAdapter) maxPriceCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	state := &repository.ConversationState{Step: repository.StateAwaitingMaxPrice}
	if err := r.states.SetState(ctx, fromID, state); err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, chatID, r.translator.T("maxprice_prompt"))
}

func (r *RealTelegramBotAdapter) resetAskCBRoute(ctx context.Context, chatID, fromID int64, _ string) error {
	return r.sendResetPrompt(ctx, chatID, fromID)
}

// resetConfirmCBRoute only honors the confirmation from the user who asked
// for the reset; anyone else pressing the button in a shared chat is ignored.
func (r *RealTelegramBotAdapter) resetConfirmCBRoute(ctx context.Context, chatID, fromID int64, data string) error {
	ownerRaw := strings.TrimPrefix(data, "reset:confirm:")
	owner, err := strconv.ParseInt(ownerRaw, 10, 64)
	if err != nil || owner != fromID {
		return r.SendMessage(ctx, chatID, r.translator.T("error_unauthorized"))
	}
	user, err := r.facade.HandleReset(ctx, fromID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, chatID, r.translator.T("reset_done", user.MaxFinds))
}

func (r *RealTelegramBotAdapter) resetCancelCBRoute(ctx context.Context, chatID, _ int64, _ string) error {
	return r.SendMessage(ctx, chatID, r.translator.T("reset_cancelled"))
}

// sendMainMenu renders the text followed by the standard button grid. The
// monitor button reflects the user's current state; a nil user gets the
// default layout.
func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, chatID int64, text string, user *model.User) error {
	monitorBtn := adapter.InlineButton{Text: r.translator.T("menu_start_monitoring"), Data: "monitor:start"}
	if user != nil && user.Monitoring {
		monitorBtn = adapter.InlineButton{Text: r.translator.T("menu_stop_monitoring"), Data: "monitor:stop"}
	}
	rows := [][]adapter.InlineButton{
		{
			{Text: r.translator.T("menu_status"), Data: "cmd:status"},
			{Text: r.translator.T("menu_purchases"), Data: "cmd:purchases"},
		},
		{
			{Text: r.translator.T("menu_settoken"), Data: "cmd:settoken"},
			{Text: r.translator.T("menu_settings"), Data: "cmd:settings"},
		},
		{monitorBtn},
		{{Text: r.translator.T("menu_help"), Data: "cmd:help"}},
	}
	return r.SendButtons(ctx, chatID, text, rows)
}

func (r *RealTelegramBotAdapter) sendSettingsMenu(ctx context.Context, chatID, tgID int64) error {
	user, err := r.facade.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}

	text := r.translator.T("settings_message",
		r.autoPurchaseLabel(user),
		model.FormatPriceUSD(user.MaxPriceCents),
		user.MaxFinds,
		user.MaxItemAgeDays,
	)
	rows := [][]adapter.InlineButton{
		{{Text: r.translator.T("menu_auto_purchase", r.autoPurchaseLabel(user)), Data: "settings:auto"}},
		{{Text: r.translator.T("menu_max_price", model.FormatPriceUSD(user.MaxPriceCents)), Data: "settings:maxprice"}},
		{{Text: r.translator.T("menu_reset"), Data: "settings:reset"}},
		{{Text: r.translator.T("menu_back"), Data: "cmd:menu"}},
	}
	return r.SendButtons(ctx, chatID, text, rows)
}

func (r *RealTelegramBotAdapter) sendResetPrompt(ctx context.Context, chatID, tgID int64) error {
	rows := [][]adapter.InlineButton{
		{{Text: r.translator.T("menu_reset_confirm"), Data: fmt.Sprintf("reset:confirm:%d", tgID)}},
		{{Text: r.translator.T("menu_reset_cancel"), Data: "reset:cancel"}},
	}
	return r.SendButtons(ctx, chatID, r.translator.T("reset_prompt"), rows)
}
