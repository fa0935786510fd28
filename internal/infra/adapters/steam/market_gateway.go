// File: internal/infra/adapters/steam/market_gateway.go
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"telegram-skin-radar/internal/domain/ports/adapter"
)

var _ adapter.PurchaseGateway = (*MarketGateway)(nil)

// MarketGateway implements adapter.PurchaseGateway against the Steam
// Community Market buy-order endpoint. Purchases ride on the user's own
// browser session cookie; the bot holds no credentials of its own.
type MarketGateway struct {
	baseURL  string
	appID    int
	currency int
	client   *http.Client
}

func NewMarketGateway(baseURL string, appID, currency int, timeout time.Duration) (*MarketGateway, error) {
	if baseURL == "" {
		baseURL = "https://steamcommunity.com"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid steam base url: %w", err)
	}
	if appID <= 0 {
		return nil, errors.New("steam app id required")
	}
	if currency <= 0 {
		currency = 1 // USD
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MarketGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		appID:    appID,
		currency: currency,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (g *MarketGateway) Name() string { return "steam-market" }

// PlaceBuyOrder submits a createbuyorder request for one unit at the given
// total price. Steam reports logical failures inside a 200 response; those
// come back in the result, not as an error.
func (g *MarketGateway) PlaceBuyOrder(ctx context.Context, sessionToken, marketHashName string, priceCents int) (adapter.BuyOrderResult, error) {
	if sessionToken == "" {
		return adapter.BuyOrderResult{FailReason: "no session token"}, nil
	}

	listing := g.baseURL + "/market/listings/" + strconv.Itoa(g.appID) + "/" + url.PathEscape(marketHashName)

	form := url.Values{}
	form.Set("sessionid", sessionToken)
	form.Set("currency", strconv.Itoa(g.currency))
	form.Set("appid", strconv.Itoa(g.appID))
	form.Set("market_hash_name", marketHashName)
	form.Set("price_total", strconv.Itoa(priceCents))
	form.Set("quantity", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/market/createbuyorder/", strings.NewReader(form.Encode()))
	if err != nil {
		return adapter.BuyOrderResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", listing)
	req.Header.Set("Origin", g.baseURL)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: sessionToken})
	req.AddCookie(&http.Cookie{Name: "steamLoginSecure", Value: sessionToken})

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.BuyOrderResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return adapter.BuyOrderResult{
			FailReason: fmt.Sprintf("HTTP %d", resp.StatusCode),
		}, nil
	}

	var out struct {
		Success    int    `json:"success"`
		Message    string `json:"message"`
		BuyOrderID string `json:"buy_orderid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.BuyOrderResult{}, fmt.Errorf("steam buy order: decode: %w", err)
	}

	if out.Success != 1 {
		reason := out.Message
		if reason == "" {
			reason = "unknown Steam error"
		}
		return adapter.BuyOrderResult{FailReason: reason}, nil
	}
	return adapter.BuyOrderResult{
		Placed:     true,
		OrderID:    out.BuyOrderID,
		PriceCents: priceCents,
	}, nil
}
