package holdings

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// --- Mock storage ---

type mockAccountStorage struct {
	mu       sync.Mutex
	accounts map[string]models.LinkedAccount
}

func newMockAccountStorage() *mockAccountStorage {
	return &mockAccountStorage{accounts: make(map[string]models.LinkedAccount)}
}

func (m *mockAccountStorage) GetAccount(_ context.Context, id string) (*models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return &a, nil
}

func (m *mockAccountStorage) SaveAccount(_ context.Context, account *models.LinkedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = *account
	return nil
}

func (m *mockAccountStorage) ListAccounts(_ context.Context) ([]models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LinkedAccount
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAccountStorage) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

type mockHoldingStorage struct {
	mu       sync.Mutex
	holdings map[string][]models.UnifiedHolding // by account ID
}

func newMockHoldingStorage() *mockHoldingStorage {
	return &mockHoldingStorage{holdings: make(map[string][]models.UnifiedHolding)}
}

func (m *mockHoldingStorage) ReplaceAccountHoldings(_ context.Context, accountID string, holdings []models.UnifiedHolding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings[accountID] = holdings
	return nil
}

func (m *mockHoldingStorage) ListHoldings(_ context.Context) ([]models.UnifiedHolding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UnifiedHolding
	for _, hs := range m.holdings {
		out = append(out, hs...)
	}
	return out, nil
}

func (m *mockHoldingStorage) ListAccountHoldings(_ context.Context, accountID string) ([]models.UnifiedHolding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holdings[accountID], nil
}

func (m *mockHoldingStorage) DeleteAccountHoldings(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holdings, accountID)
	return nil
}

type mockKVStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func newMockKVStorage() *mockKVStorage {
	return &mockKVStorage{values: make(map[string]string)}
}

func (m *mockKVStorage) GetKV(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mockKVStorage) SetKV(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type mockStorageManager struct {
	accounts *mockAccountStorage
	holdings *mockHoldingStorage
	kv       *mockKVStorage
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		accounts: newMockAccountStorage(),
		holdings: newMockHoldingStorage(),
		kv:       newMockKVStorage(),
	}
}

func (m *mockStorageManager) Accounts() interfaces.AccountStorage     { return m.accounts }
func (m *mockStorageManager) Holdings() interfaces.HoldingStorage     { return m.holdings }
func (m *mockStorageManager) Portfolios() interfaces.PortfolioStorage { return nil }
func (m *mockStorageManager) Snapshots() interfaces.SnapshotStorage   { return nil }
func (m *mockStorageManager) News() interfaces.NewsStorage            { return nil }
func (m *mockStorageManager) Sentiments() interfaces.SentimentStorage { return nil }
func (m *mockStorageManager) KV() interfaces.KeyValueStorage          { return m.kv }
func (m *mockStorageManager) Close() error                            { return nil }

// --- Mock provider clients ---

type mockProviderClient struct {
	provider models.Provider
	holdings []models.RawHolding
	err      error
	delay    time.Duration
}

func (m *mockProviderClient) Provider() models.Provider { return m.provider }

func (m *mockProviderClient) FetchHoldings(ctx context.Context, _ *models.LinkedAccount) ([]models.RawHolding, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.holdings, nil
}

type mockRegistry struct {
	clients map[models.Provider]interfaces.ProviderClient
}

func (m *mockRegistry) ClientFor(p models.Provider) (interfaces.ProviderClient, bool) {
	c, ok := m.clients[p]
	return c, ok
}

func newService(storage *mockStorageManager, registry *mockRegistry, timeout time.Duration) *Service {
	return NewService(storage, registry, timeout, common.NewSilentLogger())
}

func linkTestAccount(t *testing.T, storage *mockStorageManager, id string, provider models.Provider) {
	t.Helper()
	err := storage.accounts.SaveAccount(context.Background(), &models.LinkedAccount{
		ID:       id,
		Name:     id + " account",
		Provider: provider,
	})
	if err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
}

// --- Tests ---

func TestSyncAll_NoAccounts(t *testing.T) {
	storage := newMockStorageManager()
	svc := newService(storage, &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{}}, time.Second)

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SyncedAccounts != 0 || len(report.FailedAccounts) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestSyncAll_PartialFailure(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "good", models.ProviderRobinhood)
	linkTestAccount(t, storage, "bad", models.ProviderSchwab)

	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			provider: models.ProviderRobinhood,
			holdings: []models.RawHolding{
				{Symbol: "AAPL", Quantity: 10, AvgCost: 150, CurrentPrice: 180},
				{Symbol: "MSFT", Quantity: 5, AvgCost: 300, CurrentPrice: 310},
			},
		},
		models.ProviderSchwab: &mockProviderClient{
			provider: models.ProviderSchwab,
			err:      errors.New("provider unavailable"),
		},
	}}

	svc := newService(storage, registry, time.Second)
	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}

	if report.SyncedAccounts != 1 {
		t.Errorf("synced = %d, want 1", report.SyncedAccounts)
	}
	if len(report.FailedAccounts) != 1 || report.FailedAccounts[0].AccountID != "bad" {
		t.Errorf("failed accounts = %+v, want one entry for 'bad'", report.FailedAccounts)
	}
	if report.HoldingsTotal != 2 {
		t.Errorf("holdings total = %d, want 2", report.HoldingsTotal)
	}

	// Successful account's holdings are stored and usable.
	stored, _ := storage.holdings.ListAccountHoldings(context.Background(), "good")
	if len(stored) != 2 {
		t.Errorf("stored holdings = %d, want 2", len(stored))
	}
}

func TestSyncAll_AllFailed(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "a", models.ProviderRobinhood)
	linkTestAccount(t, storage, "b", models.ProviderSchwab)

	failing := &mockProviderClient{err: errors.New("boom")}
	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: failing,
		models.ProviderSchwab:    failing,
	}}

	svc := newService(storage, registry, time.Second)
	report, err := svc.SyncAll(context.Background())
	if !errors.Is(err, models.ErrProviderFetchFailed) {
		t.Fatalf("expected ErrProviderFetchFailed, got %v", err)
	}
	if report == nil || len(report.FailedAccounts) != 2 {
		t.Errorf("report should still list all failures, got %+v", report)
	}
}

func TestSyncAll_SlowProviderTimesOut(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "fast", models.ProviderRobinhood)
	linkTestAccount(t, storage, "slow", models.ProviderPlaid)

	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			holdings: []models.RawHolding{{Symbol: "NVDA", Quantity: 1, AvgCost: 400, CurrentPrice: 500}},
		},
		models.ProviderPlaid: &mockProviderClient{
			delay:    time.Second,
			holdings: []models.RawHolding{{Symbol: "USD", Quantity: 100, AvgCost: 1, CurrentPrice: 1}},
		},
	}}

	svc := newService(storage, registry, 50*time.Millisecond)

	start := time.Now()
	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("slow provider blocked the sync past its timeout")
	}
	if report.SyncedAccounts != 1 {
		t.Errorf("synced = %d, want 1", report.SyncedAccounts)
	}
	if len(report.FailedAccounts) != 1 || report.FailedAccounts[0].AccountID != "slow" {
		t.Errorf("failed accounts = %+v, want timeout entry for 'slow'", report.FailedAccounts)
	}
}

func TestSyncAll_MalformedRecordsSkipped(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "acc", models.ProviderRobinhood)

	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			holdings: []models.RawHolding{
				{Symbol: "AAPL", Quantity: 10, AvgCost: 150, CurrentPrice: 180},
				{Symbol: "BAD", Quantity: math.NaN(), AvgCost: 1, CurrentPrice: 1},
				{Symbol: "MSFT", Quantity: 5, AvgCost: 300, CurrentPrice: 310},
			},
		},
	}}

	svc := newService(storage, registry, time.Second)
	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RecordsSkipped != 1 {
		t.Errorf("skipped = %d, want 1", report.RecordsSkipped)
	}
	if report.HoldingsTotal != 2 {
		t.Errorf("holdings total = %d, want 2", report.HoldingsTotal)
	}
}

func TestSyncAll_DuplicateSymbolsKeptDistinct(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "acc", models.ProviderRobinhood)

	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			holdings: []models.RawHolding{
				{Symbol: "AAPL", Quantity: 10, AvgCost: 150, CurrentPrice: 180},
				{Symbol: "AAPL", Quantity: 2, AvgCost: 160, CurrentPrice: 180},
			},
		},
	}}

	svc := newService(storage, registry, time.Second)
	if _, err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := storage.holdings.ListAccountHoldings(context.Background(), "acc")
	if len(stored) != 2 {
		t.Fatalf("stored holdings = %d, want 2 distinct records", len(stored))
	}
	ids := map[string]bool{stored[0].ID: true, stored[1].ID: true}
	if !ids["acc:AAPL"] || !ids["acc:AAPL#2"] {
		t.Errorf("ids = %v, want acc:AAPL and acc:AAPL#2", ids)
	}
}

func TestSyncAll_LastSyncedOnlyOnSuccess(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "good", models.ProviderRobinhood)
	linkTestAccount(t, storage, "bad", models.ProviderSchwab)

	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			holdings: []models.RawHolding{{Symbol: "AAPL", Quantity: 1, AvgCost: 1, CurrentPrice: 1}},
		},
		models.ProviderSchwab: &mockProviderClient{err: errors.New("down")},
	}}

	svc := newService(storage, registry, time.Second)
	if _, err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	good, _ := storage.accounts.GetAccount(context.Background(), "good")
	if good.LastSyncedAt.IsZero() {
		t.Error("successful account should have LastSyncedAt set")
	}
	bad, _ := storage.accounts.GetAccount(context.Background(), "bad")
	if !bad.LastSyncedAt.IsZero() {
		t.Error("failed account must not advance LastSyncedAt")
	}
}

func TestLastSyncReport(t *testing.T) {
	storage := newMockStorageManager()
	svc := newService(storage, &mockRegistry{}, time.Second)

	report, err := svc.LastSyncReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != nil {
		t.Fatalf("expected nil report before any sync, got %+v", report)
	}

	linkTestAccount(t, storage, "acc", models.ProviderRobinhood)
	registry := &mockRegistry{clients: map[models.Provider]interfaces.ProviderClient{
		models.ProviderRobinhood: &mockProviderClient{
			holdings: []models.RawHolding{{Symbol: "AAPL", Quantity: 1, AvgCost: 1, CurrentPrice: 1}},
		},
	}}
	svc = newService(storage, registry, time.Second)
	if _, err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err = svc.LastSyncReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil {
		t.Fatal("expected persisted report after sync")
	}
	if report.SyncedAccounts != 1 || report.HoldingsTotal != 1 {
		t.Errorf("report = %+v, want 1 synced account with 1 holding", report)
	}
}

func TestLinkAccount(t *testing.T) {
	storage := newMockStorageManager()
	svc := newService(storage, &mockRegistry{}, time.Second)

	account, err := svc.LinkAccount(context.Background(), &models.LinkedAccount{Provider: models.ProviderPlaid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID == "" {
		t.Error("expected generated account ID")
	}
	if account.Name == "" {
		t.Error("expected default account name")
	}

	_, err = svc.LinkAccount(context.Background(), &models.LinkedAccount{Provider: "etrade"})
	if err == nil {
		t.Error("unsupported provider must be rejected")
	}
}

func TestUnlinkAccount_RemovesHoldings(t *testing.T) {
	storage := newMockStorageManager()
	linkTestAccount(t, storage, "acc", models.ProviderRobinhood)
	storage.holdings.ReplaceAccountHoldings(context.Background(), "acc", []models.UnifiedHolding{
		{ID: "acc:AAPL", Symbol: "AAPL", AccountID: "acc"},
	})

	svc := newService(storage, &mockRegistry{}, time.Second)
	if err := svc.UnlinkAccount(context.Background(), "acc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := storage.accounts.GetAccount(context.Background(), "acc"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Error("account should be removed")
	}
	remaining, _ := storage.holdings.ListHoldings(context.Background())
	if len(remaining) != 0 {
		t.Errorf("holdings should be removed with the account, got %d", len(remaining))
	}

	if err := svc.UnlinkAccount(context.Background(), "missing"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for unknown account, got %v", err)
	}
}
