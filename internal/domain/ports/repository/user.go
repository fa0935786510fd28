package repository

import (
	"context"
	"time"

	"telegram-skin-radar/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	// IncrementFindCount bumps found_count on the stored row and returns the
	// new value. The scan path must use this instead of Save so a command that
	// landed mid-cycle is never overwritten by a stale snapshot.
	IncrementFindCount(ctx context.Context, tx Tx, userID string) (int, error)
	// SetMonitoring flips the stored monitoring flag and reports whether the
	// value actually changed.
	SetMonitoring(ctx context.Context, tx Tx, userID string, monitoring bool) (bool, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// FindMonitoring returns all users whose radar is currently switched on.
	FindMonitoring(ctx context.Context, tx Tx) ([]*model.User, error)
	// ListUsers pages through all users, newest registrations first.
	ListUsers(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountMonitoring(ctx context.Context, tx Tx) (int, error)
	CountInactiveUsers(ctx context.Context, tx Tx, since time.Time) (int, error)
}
