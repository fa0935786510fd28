package model

import "time"

// Item is the projection of a market-index item that the radar cares about.
// Field names follow the SCMM item API payload.
type Item struct {
	ID             int64
	Name           string
	CreatorID      int64
	CreatorName    string
	ItemType       string
	ItemCollection string
	IsAccepted     bool
	TimeAccepted   time.Time
	TimeCreated    time.Time
	MarketID       string
	// Lowest open sell order in cents; zero when the item is not listed yet.
	SellOrderLowestPriceCents int
	BuyOrderCount             int
	SellOrderCount            int
	WorkshopFileID            int64
	WorkshopFileURL           string
}

// RecentWithin reports whether the item was accepted (or, lacking that,
// created) within maxAge of now. Items with no usable timestamp are treated
// as stale so the radar never alerts on them.
func (i *Item) RecentWithin(maxAge time.Duration, now time.Time) bool {
	ts := i.TimeAccepted
	if ts.IsZero() {
		ts = i.TimeCreated
	}
	if ts.IsZero() {
		return false
	}
	return now.Sub(ts) <= maxAge
}
