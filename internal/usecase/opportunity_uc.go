package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/i18n"
	"telegram-skin-radar/internal/infra/logging"
	"telegram-skin-radar/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ OpportunityUseCase = (*opportunityUC)(nil)

// OpportunityUseCase records first-time-creator hits, drives the automatic
// buy-order attempt and delivers the alert to the user.
type OpportunityUseCase interface {
	Record(ctx context.Context, user *model.User, item *model.Item) (*model.Opportunity, error)
	History(ctx context.Context, userID string, limit int) ([]*model.Opportunity, error)
}

type opportunityUC struct {
	opps     repository.OpportunityRepository
	creators repository.CreatorRepository
	users    repository.UserRepository
	gateway  adapter.PurchaseGateway
	cipher   TokenCipher
	bot      adapter.TelegramBotAdapter
	tr       *i18n.Translator
	log      *zerolog.Logger

	steamBaseURL string
	appID        int
	marketSite   string
}

func NewOpportunityUseCase(
	opps repository.OpportunityRepository,
	creators repository.CreatorRepository,
	users repository.UserRepository,
	gateway adapter.PurchaseGateway,
	cipher TokenCipher,
	bot adapter.TelegramBotAdapter,
	translator *i18n.Translator,
	steamBaseURL string,
	appID int,
	marketSite string,
	logger *zerolog.Logger,
) *opportunityUC {
	return &opportunityUC{
		opps:         opps,
		creators:     creators,
		users:        users,
		gateway:      gateway,
		cipher:       cipher,
		bot:          bot,
		tr:           translator,
		log:          logger,
		steamBaseURL: strings.TrimRight(steamBaseURL, "/"),
		appID:        appID,
		marketSite:   strings.TrimRight(marketSite, "/"),
	}
}

// Record persists the opportunity, bumps the user's find counter, attempts a
// buy order when the user opted in and the price fits their cap, and finally
// sends the alert. Notification failures are logged but never fail the scan.
func (u *opportunityUC) Record(ctx context.Context, user *model.User, item *model.Item) (*model.Opportunity, error) {
	defer logging.TraceDuration(u.log, "OpportunityUC.Record")()

	opp := model.NewOpportunity(user.ID, item)

	// Remember the creator so their next item no longer counts as a debut.
	creator := model.NewCreator(opp.CreatorID, item.CreatorName, 1)
	if err := u.creators.Save(ctx, repository.NoTX, creator); err != nil {
		u.log.Warn().Err(err).Str("creator_id", opp.CreatorID).Msg("failed to persist creator")
	}

	note := u.attemptPurchase(ctx, user, item, opp)

	// The user struct is a snapshot taken at tick start; a full-row save here
	// would clobber any command that landed mid-cycle. Bump the counter on the
	// stored row instead and fold the result back into the snapshot.
	count, err := u.users.IncrementFindCount(ctx, repository.NoTX, user.ID)
	if err != nil {
		return nil, err
	}
	user.FoundCount = count
	if err := u.opps.Save(ctx, repository.NoTX, opp); err != nil {
		return nil, err
	}
	metrics.IncOpportunity()

	if err := u.bot.SendMessage(ctx, user.TelegramID, u.buildAlert(user, item, opp, note)); err != nil {
		u.log.Error().Err(err).Int64("tg_id", user.TelegramID).Msg("failed to deliver alert")
	}
	return opp, nil
}

func (u *opportunityUC) History(ctx context.Context, userID string, limit int) ([]*model.Opportunity, error) {
	defer logging.TraceDuration(u.log, "OpportunityUC.History")()
	return u.opps.ListRecentByUser(ctx, repository.NoTX, userID, limit)
}

// attemptPurchase runs the auto-buy decision tree and returns the alert line
// describing the outcome. The opportunity is mutated in place.
func (u *opportunityUC) attemptPurchase(ctx context.Context, user *model.User, item *model.Item, opp *model.Opportunity) string {
	price := opp.PriceCents
	switch {
	case !user.AutoPurchase:
		metrics.IncBuyOrder("skipped")
		return u.tr.T("alert_auto_disabled")
	case !user.HasSteamToken():
		metrics.IncBuyOrder("skipped")
		opp.PurchaseError = "no steam token"
		return u.tr.T("alert_purchase_failed", "no Steam token configured")
	case price <= 0:
		// No listing yet, nothing to bid against.
		metrics.IncBuyOrder("skipped")
		return u.tr.T("alert_footer_manual")
	case price > user.MaxPriceCents:
		metrics.IncBuyOrder("skipped")
		return u.tr.T("alert_price_too_high",
			model.FormatPriceUSD(price), model.FormatPriceUSD(user.MaxPriceCents))
	}

	token, err := u.cipher.Decrypt(user.SteamToken)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("steam token decryption failed")
		metrics.IncBuyOrder("error")
		opp.PurchaseError = "token unavailable"
		return u.tr.T("alert_purchase_failed", "stored token could not be read")
	}

	res, err := u.gateway.PlaceBuyOrder(ctx, token, item.Name, price)
	if err != nil {
		metrics.IncBuyOrder("error")
		opp.PurchaseError = err.Error()
		return u.tr.T("alert_purchase_failed", err.Error())
	}
	if !res.Placed {
		metrics.IncBuyOrder("rejected")
		opp.PurchaseError = res.FailReason
		return u.tr.T("alert_purchase_failed", res.FailReason)
	}
	metrics.IncBuyOrder("placed")
	opp.Purchased = true
	return u.tr.T("alert_purchase_ok", model.FormatPriceUSD(price))
}

func (u *opportunityUC) buildAlert(user *model.User, item *model.Item, opp *model.Opportunity, note string) string {
	var b strings.Builder
	if opp.Purchased {
		b.WriteString(u.tr.T("alert_header_purchased"))
	} else {
		b.WriteString(u.tr.T("alert_header_found"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "🎨 *Item:* %s\n", item.Name)
	creator := item.CreatorName
	if creator == "" {
		creator = opp.CreatorID
	}
	fmt.Fprintf(&b, "👤 *Creator:* %s\n", creator)
	if item.ItemType != "" {
		fmt.Fprintf(&b, "🏷️ *Type:* %s\n", item.ItemType)
	}
	if item.ItemCollection != "" {
		fmt.Fprintf(&b, "📦 *Collection:* %s\n", item.ItemCollection)
	}
	if opp.PriceCents > 0 {
		fmt.Fprintf(&b, "💰 *Price:* %s\n", model.FormatPriceUSD(opp.PriceCents))
	} else {
		b.WriteString("💰 *Price:* Unknown\n")
	}
	if item.BuyOrderCount > 0 || item.SellOrderCount > 0 {
		fmt.Fprintf(&b, "📊 *Orders:* %d buy, %d sell\n", item.BuyOrderCount, item.SellOrderCount)
	}

	// The market id gives a stable listing URL; fall back to the escaped
	// item name when the index has not assigned one yet.
	listing := url.PathEscape(item.Name)
	if item.MarketID != "" {
		listing = item.MarketID
	}
	links := []string{
		fmt.Sprintf("[Steam Market](%s/market/listings/%d/%s)", u.steamBaseURL, u.appID, listing),
		fmt.Sprintf("[SCMM](%s/item/%d)", u.marketSite, item.ID),
	}
	if item.WorkshopFileURL != "" {
		links = append(links, fmt.Sprintf("[Workshop](%s)", item.WorkshopFileURL))
	}
	fmt.Fprintf(&b, "🔗 %s\n\n", strings.Join(links, " | "))

	if note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "📈 Progress: %d/%d\n", user.FoundCount, user.MaxFinds)
	if opp.Purchased {
		b.WriteString(u.tr.T("alert_footer_purchased"))
	} else {
		b.WriteString(u.tr.T("alert_footer_manual"))
	}
	return b.String()
}
