package adapter

import "context"

// BuyOrderResult captures a minimal, provider-agnostic result of a buy-order
// attempt. FailReason carries the provider message when Placed is false.
type BuyOrderResult struct {
	Placed     bool
	OrderID    string
	PriceCents int
	FailReason string
}

// PurchaseGateway is the hex port for market purchase providers.
type PurchaseGateway interface {
	Name() string

	// PlaceBuyOrder submits a buy order for one unit of the named listing
	// using the user's session token. A non-nil error means the provider
	// could not be reached at all; provider-side rejections come back in
	// the result instead.
	PlaceBuyOrder(ctx context.Context, sessionToken, marketHashName string, priceCents int) (BuyOrderResult, error)
}
