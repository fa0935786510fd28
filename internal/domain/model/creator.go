package model

import "time"

// Creator is a workshop author seen on the market index. Once a creator is
// recorded with more than one accepted item they are never a first-time
// creator again, so the record doubles as a global negative cache.
type Creator struct {
	ID        string
	Name      string
	FirstSeen time.Time
	ItemCount int
}

func NewCreator(id, name string, itemCount int) *Creator {
	if itemCount <= 0 {
		itemCount = 1
	}
	return &Creator{
		ID:        id,
		Name:      name,
		FirstSeen: time.Now().UTC(),
		ItemCount: itemCount,
	}
}
