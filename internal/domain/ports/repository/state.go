package repository

import (
	"context"
)

// ConversationStep identifies what free-text input the bot is waiting for.
type ConversationStep string

const (
	StateAwaitingSteamToken ConversationStep = "awaiting_steam_token"
	StateAwaitingMaxPrice   ConversationStep = "awaiting_max_price"
)

// ConversationState holds the user's progress in any multi-step conversation.
type ConversationState struct {
	Step ConversationStep  `json:"step"`
	Data map[string]string `json:"data"`
}

// StateRepository is the port for managing any user's conversational state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
