package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Opportunity records a first-time-creator hit for one user, together with
// the result of the automatic buy-order attempt (if any). IDs are ULIDs so
// listings sort by creation time without an extra index.
type Opportunity struct {
	ID            string
	UserID        string
	ItemID        int64
	ItemName      string
	CreatorID     string
	CreatorName   string
	PriceCents    int
	Purchased     bool
	PurchaseError string
	CreatedAt     time.Time
}

func NewOpportunity(userID string, item *Item) *Opportunity {
	now := time.Now().UTC()
	return &Opportunity{
		ID:          ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:      userID,
		ItemID:      item.ID,
		ItemName:    item.Name,
		CreatorID:   CreatorKey(item.CreatorID),
		CreatorName: item.CreatorName,
		PriceCents:  item.SellOrderLowestPriceCents,
		CreatedAt:   now,
	}
}
