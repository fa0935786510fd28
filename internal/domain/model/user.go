package model

import (
	"time"

	"telegram-skin-radar/internal/domain"

	"github.com/google/uuid"
)

// Default per-user radar settings. They mirror the bot's original behavior:
// every user gets ten finds per run, a $10.00 price ceiling and a three-day
// freshness window.
const (
	DefaultMaxFinds       = 10
	DefaultMaxPriceCents  = 1000
	DefaultMaxItemAgeDays = 3

	MinMaxPriceCents = 50    // $0.50
	MaxMaxPriceCents = 50000 // $500.00
)

// User is a domain entity representing a Telegram user and their radar
// session. SteamToken holds the ciphertext produced by the encryption
// service; the plaintext token never reaches a repository.
type User struct {
	ID             string
	TelegramID     int64
	Username       string
	SteamToken     string
	Monitoring     bool
	FoundCount     int
	MaxFinds       int
	AutoPurchase   bool
	MaxPriceCents  int
	MaxItemAgeDays int
	RegisteredAt   time.Time
	LastActiveAt   time.Time
}

func NewUser(id string, tgID int64, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	u := &User{
		ID:             id,
		TelegramID:     tgID,
		Username:       username,
		Monitoring:     false,
		FoundCount:     0,
		MaxFinds:       DefaultMaxFinds,
		AutoPurchase:   true,
		MaxPriceCents:  DefaultMaxPriceCents,
		MaxItemAgeDays: DefaultMaxItemAgeDays,
		RegisteredAt:   time.Now(),
		LastActiveAt:   time.Now(),
	}
	return u, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }

// HasSteamToken reports whether a Steam session token is configured.
func (u *User) HasSteamToken() bool { return u.SteamToken != "" }

// LimitReached reports whether the user exhausted their find allowance.
func (u *User) LimitReached() bool { return u.FoundCount >= u.MaxFinds }

// MaxItemAge returns the freshness window as a duration.
func (u *User) MaxItemAge() time.Duration {
	days := u.MaxItemAgeDays
	if days <= 0 {
		days = DefaultMaxItemAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}
