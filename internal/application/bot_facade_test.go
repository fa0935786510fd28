package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-skin-radar/internal/application"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/usecase"
)

// mockUserUC implements the UserUseCase methods the facade touches.
type mockUserUC struct {
	users map[int64]*model.User

	registered  int64
	autoSet     *bool
	tokenSet    string
	priceSet    int
	resetCalled bool

	getErr error
}

func newMockUserUC(users ...*model.User) *mockUserUC {
	m := &mockUserUC{users: map[int64]*model.User{}}
	for _, u := range users {
		m.users[u.TelegramID] = u
	}
	return m
}

func (m *mockUserUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	m.registered = tgID
	if u, ok := m.users[tgID]; ok {
		return u, nil
	}
	u, err := model.NewUser("", tgID, username)
	if err != nil {
		return nil, err
	}
	m.users[tgID] = u
	return u, nil
}

func (m *mockUserUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[tgID]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockUserUC) SetSteamToken(ctx context.Context, tgID int64, token string) error {
	m.tokenSet = token
	return nil
}

func (m *mockUserUC) SetAutoPurchase(ctx context.Context, tgID int64, enabled bool) (*model.User, error) {
	m.autoSet = &enabled
	u := m.users[tgID]
	u.AutoPurchase = enabled
	return u, nil
}

func (m *mockUserUC) SetMaxPrice(ctx context.Context, tgID int64, cents int) error {
	m.priceSet = cents
	return nil
}

func (m *mockUserUC) StartMonitoring(ctx context.Context, tgID int64) (*model.User, error) {
	u := m.users[tgID]
	u.Monitoring = true
	return u, nil
}

func (m *mockUserUC) StopMonitoring(ctx context.Context, tgID int64) error {
	m.users[tgID].Monitoring = false
	return nil
}

func (m *mockUserUC) ResetProgress(ctx context.Context, tgID int64) (*model.User, error) {
	m.resetCalled = true
	u := m.users[tgID]
	u.FoundCount = 0
	return u, nil
}

func (m *mockUserUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return nil, nil
}
func (m *mockUserUC) Count(ctx context.Context) (int, error)           { return len(m.users), nil }
func (m *mockUserUC) CountMonitoring(ctx context.Context) (int, error) { return 0, nil }
func (m *mockUserUC) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

type mockOppUC struct {
	history []*model.Opportunity
}

func (m *mockOppUC) Record(ctx context.Context, user *model.User, item *model.Item) (*model.Opportunity, error) {
	return nil, nil
}
func (m *mockOppUC) History(ctx context.Context, userID string, limit int) ([]*model.Opportunity, error) {
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

type mockStatsUC struct {
	summary *usecase.Stats
}

func (m *mockStatsUC) Summary(ctx context.Context) (*usecase.Stats, error) { return m.summary, nil }
func (m *mockStatsUC) UserStatus(ctx context.Context, u *model.User) (*usecase.UserStatus, error) {
	return &usecase.UserStatus{User: u, FindsTotal: 4}, nil
}

func seedUser(t *testing.T, tgID int64) *model.User {
	t.Helper()
	u, err := model.NewUser("", tgID, "facade_user")
	if err != nil {
		t.Fatalf("model.NewUser failed: %v", err)
	}
	return u
}

func TestHandleStartAndStatus(t *testing.T) {
	ctx := context.Background()
	users := newMockUserUC()
	f := application.NewBotFacade(users, nil, nil, &mockStatsUC{})

	u, err := f.HandleStart(ctx, 100, "newcomer")
	if err != nil {
		t.Fatalf("HandleStart returned error: %v", err)
	}
	if users.registered != 100 || u.Username != "newcomer" {
		t.Fatalf("registration not recorded: %+v", u)
	}

	st, err := f.HandleStatus(ctx, 100)
	if err != nil {
		t.Fatalf("HandleStatus returned error: %v", err)
	}
	if st.User.TelegramID != 100 || st.FindsTotal != 4 {
		t.Fatalf("status mismatch: %+v", st)
	}
}

func TestHandleToggleAutoPurchase(t *testing.T) {
	ctx := context.Background()
	u := seedUser(t, 100)
	u.AutoPurchase = true
	users := newMockUserUC(u)
	f := application.NewBotFacade(users, nil, nil, nil)

	got, err := f.HandleToggleAutoPurchase(ctx, 100)
	if err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	if users.autoSet == nil || *users.autoSet != false {
		t.Fatal("expected the flag to be flipped off")
	}
	if got.AutoPurchase {
		t.Fatal("expected returned user to carry the new state")
	}
}

func TestHandlePurchases(t *testing.T) {
	ctx := context.Background()
	u := seedUser(t, 100)
	users := newMockUserUC(u)
	opps := &mockOppUC{history: []*model.Opportunity{
		{ID: "a", UserID: u.ID}, {ID: "b", UserID: u.ID}, {ID: "c", UserID: u.ID},
	}}
	f := application.NewBotFacade(users, nil, opps, nil)

	got, err := f.HandlePurchases(ctx, 100, 2)
	if err != nil {
		t.Fatalf("HandlePurchases returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("unexpected history: %+v", got)
	}

	users.getErr = errors.New("boom")
	if _, err := f.HandlePurchases(ctx, 100, 2); err == nil {
		t.Fatal("expected the user lookup error to surface")
	}
}

func TestHandleMonitoringAndReset(t *testing.T) {
	ctx := context.Background()
	u := seedUser(t, 100)
	u.FoundCount = 7
	users := newMockUserUC(u)
	f := application.NewBotFacade(users, nil, nil, nil)

	started, err := f.HandleStartMonitoring(ctx, 100)
	if err != nil {
		t.Fatalf("HandleStartMonitoring returned error: %v", err)
	}
	if !started.Monitoring {
		t.Fatal("expected monitoring to be on")
	}
	if err := f.HandleStopMonitoring(ctx, 100); err != nil {
		t.Fatalf("HandleStopMonitoring returned error: %v", err)
	}
	if u.Monitoring {
		t.Fatal("expected monitoring to be off")
	}

	reset, err := f.HandleReset(ctx, 100)
	if err != nil {
		t.Fatalf("HandleReset returned error: %v", err)
	}
	if !users.resetCalled || reset.FoundCount != 0 {
		t.Fatalf("reset not applied: %+v", reset)
	}
}

func TestHandleAdminStats(t *testing.T) {
	want := &usecase.Stats{Users: 12, Monitoring: 3}
	f := application.NewBotFacade(nil, nil, nil, &mockStatsUC{summary: want})

	got, err := f.HandleAdminStats(context.Background())
	if err != nil {
		t.Fatalf("HandleAdminStats returned error: %v", err)
	}
	if got.Users != 12 || got.Monitoring != 3 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}
