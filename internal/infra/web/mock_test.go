//go:build !integration

package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/usecase"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockStatsUC struct {
	stats *usecase.Stats
	err   error
}

var _ usecase.StatsUseCase = (*mockStatsUC)(nil)

func (m *mockStatsUC) Summary(ctx context.Context) (*usecase.Stats, error) {
	return m.stats, m.err
}

func (m *mockStatsUC) UserStatus(ctx context.Context, user *model.User) (*usecase.UserStatus, error) {
	return &usecase.UserStatus{User: user}, nil
}

type mockUserUC struct {
	users map[int64]*model.User
}

var _ usecase.UserUseCase = (*mockUserUC)(nil)

func newMockUserUC(users ...*model.User) *mockUserUC {
	m := &mockUserUC{users: make(map[int64]*model.User)}
	for _, u := range users {
		m.users[u.TelegramID] = u
	}
	return m
}

func (m *mockUserUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	return m.GetByTelegramID(ctx, tgID)
}

func (m *mockUserUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	u, ok := m.users[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserUC) SetSteamToken(ctx context.Context, tgID int64, token string) error { return nil }

func (m *mockUserUC) SetAutoPurchase(ctx context.Context, tgID int64, enabled bool) (*model.User, error) {
	return m.GetByTelegramID(ctx, tgID)
}

func (m *mockUserUC) SetMaxPrice(ctx context.Context, tgID int64, cents int) error { return nil }

func (m *mockUserUC) StartMonitoring(ctx context.Context, tgID int64) (*model.User, error) {
	return m.GetByTelegramID(ctx, tgID)
}

func (m *mockUserUC) StopMonitoring(ctx context.Context, tgID int64) error { return nil }

func (m *mockUserUC) ResetProgress(ctx context.Context, tgID int64) (*model.User, error) {
	return m.GetByTelegramID(ctx, tgID)
}

func (m *mockUserUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockUserUC) Count(ctx context.Context) (int, error) { return len(m.users), nil }

func (m *mockUserUC) CountMonitoring(ctx context.Context) (int, error) { return 0, nil }

func (m *mockUserUC) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

type mockOppUC struct {
	opps []*model.Opportunity
}

var _ usecase.OpportunityUseCase = (*mockOppUC)(nil)

func (m *mockOppUC) Record(ctx context.Context, user *model.User, item *model.Item) (*model.Opportunity, error) {
	return nil, nil
}

func (m *mockOppUC) History(ctx context.Context, userID string, limit int) ([]*model.Opportunity, error) {
	var out []*model.Opportunity
	for _, o := range m.opps {
		if o.UserID == userID && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}
