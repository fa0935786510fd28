//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	// A minimal in-memory locale keeps the tests self-contained; unknown keys
	// fall back to the key itself, which is enough to assert on.
	testFS := fstest.MapFS{
		"locales/en.yaml": {
			Data: []byte(strings.Join([]string{
				"monitor_finished: 'Found %d opportunities! Monitoring stopped.'",
				"alert_header_found: 'ALERT'",
				"alert_header_purchased: 'PURCHASED'",
				"alert_purchase_ok: 'purchase ok %s'",
				"alert_purchase_failed: 'purchase failed: %s'",
				"alert_price_too_high: 'price too high: %s > %s'",
				"alert_auto_disabled: 'auto disabled'",
				"alert_footer_purchased: 'bought'",
				"alert_footer_manual: 'manual'",
			}, "\n")),
		},
	}
	tr, err := i18n.NewTranslator(testFS, "en")
	if err != nil {
		panic(fmt.Sprintf("test translator: %v", err))
	}
	return tr
}

// -----------------------------
// Transaction manager
// -----------------------------

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs the callback directly with a nil Tx unless a test overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// -----------------------------
// User repository
// -----------------------------

type MockUserRepo struct {
	mu      sync.RWMutex
	byTgID  map[int64]*model.User
	SaveErr error

	FindByTelegramIDFunc func(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byTgID: make(map[int64]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byTgID[u.TelegramID] = &cp
	return nil
}

func (m *MockUserRepo) IncrementFindCount(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byTgID {
		if u.ID == userID {
			u.FoundCount++
			u.LastActiveAt = time.Now()
			return u.FoundCount, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (m *MockUserRepo) SetMonitoring(ctx context.Context, tx repository.Tx, userID string, monitoring bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byTgID {
		if u.ID == userID {
			if u.Monitoring == monitoring {
				return false, nil
			}
			u.Monitoring = monitoring
			u.LastActiveAt = time.Now()
			return true, nil
		}
	}
	return false, domain.ErrNotFound
}

func (m *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	if m.FindByTelegramIDFunc != nil {
		return m.FindByTelegramIDFunc(ctx, tx, tgID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byTgID[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.byTgID {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) FindMonitoring(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.byTgID {
		if u.Monitoring {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (m *MockUserRepo) ListUsers(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*model.User
	for _, u := range m.byTgID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisteredAt.After(all[j].RegisteredAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byTgID), nil
}

func (m *MockUserRepo) CountMonitoring(ctx context.Context, tx repository.Tx) (int, error) {
	users, _ := m.FindMonitoring(ctx, tx)
	return len(users), nil
}

func (m *MockUserRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, u := range m.byTgID {
		if !u.LastActiveAt.After(since) {
			cnt++
		}
	}
	return cnt, nil
}

// -----------------------------
// Creator repository
// -----------------------------

type MockCreatorRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Creator

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Creator, error)
}

var _ repository.CreatorRepository = (*MockCreatorRepo)(nil)

func NewMockCreatorRepo() *MockCreatorRepo {
	return &MockCreatorRepo{store: make(map[string]*model.Creator)}
}

func (m *MockCreatorRepo) Save(ctx context.Context, tx repository.Tx, c *model.Creator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.store[c.ID]; ok && prev.ItemCount > c.ItemCount {
		return nil
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCreatorRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Creator, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCreatorRepo) CountCreators(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// -----------------------------
// Opportunity repository
// -----------------------------

type MockOpportunityRepo struct {
	mu      sync.RWMutex
	store   []*model.Opportunity
	SaveErr error
}

var _ repository.OpportunityRepository = (*MockOpportunityRepo)(nil)

func NewMockOpportunityRepo() *MockOpportunityRepo { return &MockOpportunityRepo{} }

func (m *MockOpportunityRepo) Save(ctx context.Context, tx repository.Tx, o *model.Opportunity) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store = append(m.store, &cp)
	return nil
}

func (m *MockOpportunityRepo) ListRecentByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Opportunity
	for i := len(m.store) - 1; i >= 0 && len(out) < limit; i-- {
		if m.store[i].UserID == userID {
			cp := *m.store[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOpportunityRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, o := range m.store {
		if o.UserID == userID {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockOpportunityRepo) CountByUserSince(ctx context.Context, tx repository.Tx, userID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, o := range m.store {
		if o.UserID == userID && o.CreatedAt.After(since) {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockOpportunityRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockOpportunityRepo) CountAllSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, o := range m.store {
		if o.CreatedAt.After(since) {
			cnt++
		}
	}
	return cnt, nil
}

// -----------------------------
// Processed-item repository
// -----------------------------

type MockProcessedRepo struct {
	mu    sync.RWMutex
	pairs map[string]time.Time // "userID/itemID" -> processed time
}

var _ repository.ProcessedItemRepository = (*MockProcessedRepo)(nil)

func NewMockProcessedRepo() *MockProcessedRepo {
	return &MockProcessedRepo{pairs: make(map[string]time.Time)}
}

func processedKey(userID string, itemID int64) string {
	return fmt.Sprintf("%s/%d", userID, itemID)
}

func (m *MockProcessedRepo) MarkProcessed(ctx context.Context, tx repository.Tx, userID string, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[processedKey(userID, itemID)] = time.Now()
	return nil
}

func (m *MockProcessedRepo) IsProcessed(ctx context.Context, tx repository.Tx, userID string, itemID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pairs[processedKey(userID, itemID)]
	return ok, nil
}

func (m *MockProcessedRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for k := range m.pairs {
		if strings.HasPrefix(k, userID+"/") {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockProcessedRepo) ClearUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.pairs {
		if strings.HasPrefix(k, userID+"/") {
			delete(m.pairs, k)
		}
	}
	return nil
}

func (m *MockProcessedRepo) DeleteOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, at := range m.pairs {
		if at.Before(cutoff) {
			delete(m.pairs, k)
			n++
		}
	}
	return n, nil
}

// -----------------------------
// Market index
// -----------------------------

type MockMarketIndex struct {
	LatestItemsFunc      func(ctx context.Context, count int) ([]*model.Item, error)
	CreatorItemCountFunc func(ctx context.Context, creatorID string) (int, error)
	ProfileExistsFunc    func(ctx context.Context, creatorID string) (bool, error)
}

var _ adapter.MarketIndex = (*MockMarketIndex)(nil)

func (m *MockMarketIndex) Name() string { return "mock-index" }

func (m *MockMarketIndex) LatestItems(ctx context.Context, count int) ([]*model.Item, error) {
	if m.LatestItemsFunc != nil {
		return m.LatestItemsFunc(ctx, count)
	}
	return nil, nil
}

func (m *MockMarketIndex) CreatorItemCount(ctx context.Context, creatorID string) (int, error) {
	if m.CreatorItemCountFunc != nil {
		return m.CreatorItemCountFunc(ctx, creatorID)
	}
	return 1, nil
}

func (m *MockMarketIndex) ProfileExists(ctx context.Context, creatorID string) (bool, error) {
	if m.ProfileExistsFunc != nil {
		return m.ProfileExistsFunc(ctx, creatorID)
	}
	return false, nil
}

// -----------------------------
// Purchase gateway
// -----------------------------

type MockPurchaseGateway struct {
	mu     sync.Mutex
	Calls  []string // market hash names, in order
	Result adapter.BuyOrderResult
	Err    error
}

var _ adapter.PurchaseGateway = (*MockPurchaseGateway)(nil)

func (m *MockPurchaseGateway) Name() string { return "mock-gateway" }

func (m *MockPurchaseGateway) PlaceBuyOrder(ctx context.Context, sessionToken, marketHashName string, priceCents int) (adapter.BuyOrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, marketHashName)
	return m.Result, m.Err
}

// -----------------------------
// Telegram adapter
// -----------------------------

type MockBot struct {
	mu       sync.Mutex
	Messages []string
	SendErr  error
}

var _ adapter.TelegramBotAdapter = (*MockBot)(nil)

func (m *MockBot) SendMessage(ctx context.Context, telegramID int64, text string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return nil
}

func (m *MockBot) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	return m.SendMessage(ctx, telegramID, text)
}

func (m *MockBot) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages...)
}

// -----------------------------
// Creator cache
// -----------------------------

type MockCreatorCache struct {
	mu    sync.RWMutex
	known map[string]bool
	Err   error
}

func NewMockCreatorCache() *MockCreatorCache {
	return &MockCreatorCache{known: make(map[string]bool)}
}

func (m *MockCreatorCache) IsKnown(ctx context.Context, creatorID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.known[creatorID], nil
}

func (m *MockCreatorCache) MarkKnown(ctx context.Context, creatorID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known[creatorID] = true
	return nil
}

// -----------------------------
// Token cipher
// -----------------------------

type fakeCipher struct {
	DecryptErr error
}

func (f *fakeCipher) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (f *fakeCipher) Decrypt(ciphertext string) (string, error) {
	if f.DecryptErr != nil {
		return "", f.DecryptErr
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}
