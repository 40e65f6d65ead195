package holdings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// Service implements AccountService
type Service struct {
	storage        interfaces.StorageManager
	registry       interfaces.ProviderRegistry
	logger         *common.Logger
	accountTimeout time.Duration
}

// NewService creates a new account sync service
func NewService(storage interfaces.StorageManager, registry interfaces.ProviderRegistry, accountTimeout time.Duration, logger *common.Logger) *Service {
	if accountTimeout <= 0 {
		accountTimeout = 10 * time.Second
	}
	return &Service{
		storage:        storage,
		registry:       registry,
		logger:         logger,
		accountTimeout: accountTimeout,
	}
}

// LinkAccount registers an externally linked account.
func (s *Service) LinkAccount(ctx context.Context, account *models.LinkedAccount) (*models.LinkedAccount, error) {
	if !account.Provider.Valid() {
		return nil, fmt.Errorf("unsupported provider: %s", account.Provider)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Name == "" {
		account.Name = fmt.Sprintf("%s account", account.Provider)
	}

	if err := s.storage.Accounts().SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", account.ID).Str("provider", string(account.Provider)).Msg("Account linked")
	return account, nil
}

// UnlinkAccount removes an account and the unified holdings it owns.
func (s *Service) UnlinkAccount(ctx context.Context, accountID string) error {
	if _, err := s.storage.Accounts().GetAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.storage.Holdings().DeleteAccountHoldings(ctx, accountID); err != nil {
		return err
	}
	if err := s.storage.Accounts().DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	s.logger.Info().Str("id", accountID).Msg("Account unlinked")
	return nil
}

// ListAccounts returns all linked accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]models.LinkedAccount, error) {
	return s.storage.Accounts().ListAccounts(ctx)
}

// accountResult is one account's outcome within a sync cycle.
type accountResult struct {
	account  models.LinkedAccount
	holdings []models.UnifiedHolding
	skipped  int
	err      error
}

// SyncAll fetches holdings from every linked account concurrently, each
// fetch bounded by the per-account timeout. One slow or failed provider
// never blocks the others: the report carries whatever subset succeeded,
// with failures listed alongside. Only total failure returns an error.
func (s *Service) SyncAll(ctx context.Context) (*models.SyncReport, error) {
	accounts, err := s.storage.Accounts().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	report := &models.SyncReport{CompletedAt: time.Now()}
	if len(accounts) == 0 {
		return report, nil
	}

	s.logger.Info().Int("accounts", len(accounts)).Msg("Syncing linked accounts")

	// Fan out one goroutine per account; results converge on a single
	// collection point rather than per-task locking.
	results := make(chan accountResult, len(accounts))
	for _, account := range accounts {
		go func(account models.LinkedAccount) {
			results <- s.syncAccount(ctx, account)
		}(account)
	}

	for range accounts {
		res := <-results
		if res.err != nil {
			s.logger.Warn().
				Err(res.err).
				Str("account", res.account.ID).
				Str("provider", string(res.account.Provider)).
				Msg("Account sync failed")
			report.FailedAccounts = append(report.FailedAccounts, models.SyncFailure{
				AccountID:   res.account.ID,
				AccountName: res.account.Name,
				Reason:      res.err.Error(),
			})
			continue
		}
		report.SyncedAccounts++
		report.HoldingsTotal += len(res.holdings)
		report.RecordsSkipped += res.skipped
	}

	report.CompletedAt = time.Now()
	s.persistReport(ctx, report)

	if report.AllFailed() {
		return report, fmt.Errorf("%w: all %d accounts failed", models.ErrProviderFetchFailed, len(accounts))
	}

	s.logger.Info().
		Int("synced", report.SyncedAccounts).
		Int("failed", len(report.FailedAccounts)).
		Int("holdings", report.HoldingsTotal).
		Int("skipped", report.RecordsSkipped).
		Msg("Sync completed")

	return report, nil
}

// syncAccount fetches, normalizes, and stores one account's holdings.
// Malformed records are dropped and counted; the rest of the account
// continues. LastSyncedAt moves only on success.
func (s *Service) syncAccount(ctx context.Context, account models.LinkedAccount) accountResult {
	res := accountResult{account: account}

	client, ok := s.registry.ClientFor(account.Provider)
	if !ok {
		res.err = fmt.Errorf("%w: no client for provider %s", models.ErrProviderFetchFailed, account.Provider)
		return res
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.accountTimeout)
	defer cancel()

	rawHoldings, err := client.FetchHoldings(fetchCtx, &account)
	if err != nil {
		res.err = fmt.Errorf("%w: %v", models.ErrProviderFetchFailed, err)
		return res
	}

	now := time.Now()
	seen := make(map[string]int)
	for _, raw := range rawHoldings {
		unified, err := NormalizeHolding(raw, &account)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("account", account.ID).
				Str("symbol", raw.Symbol).
				Msg("Dropping malformed holding record")
			res.skipped++
			continue
		}
		// Providers occasionally report split positions for one symbol;
		// keep both records distinct so no quantity is lost.
		seen[unified.ID]++
		if n := seen[unified.ID]; n > 1 {
			unified.ID = fmt.Sprintf("%s#%d", unified.ID, n)
		}
		unified.UpdatedAt = now
		res.holdings = append(res.holdings, unified)
	}

	if err := s.storage.Holdings().ReplaceAccountHoldings(ctx, account.ID, res.holdings); err != nil {
		res.err = fmt.Errorf("failed to store holdings: %w", err)
		return res
	}

	account.LastSyncedAt = now
	if err := s.storage.Accounts().SaveAccount(ctx, &account); err != nil {
		res.err = fmt.Errorf("failed to update account: %w", err)
		return res
	}

	return res
}

// lastSyncReportKey is the KV key the most recent sync report is stored under.
const lastSyncReportKey = "sync:last_report"

// persistReport stores the report so the outcome of the latest cycle survives
// restarts. Best effort: a storage failure here never fails the sync itself.
func (s *Service) persistReport(ctx context.Context, report *models.SyncReport) {
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode sync report")
		return
	}
	if err := s.storage.KV().SetKV(ctx, lastSyncReportKey, string(data)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist sync report")
	}
}

// LastSyncReport returns the most recent persisted sync report, or nil when
// no sync has completed yet.
func (s *Service) LastSyncReport(ctx context.Context) (*models.SyncReport, error) {
	data, err := s.storage.KV().GetKV(ctx, lastSyncReportKey)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	var report models.SyncReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to decode sync report: %w", err)
	}
	return &report, nil
}

// UnifiedHoldings returns the current normalized holdings across accounts.
func (s *Service) UnifiedHoldings(ctx context.Context) ([]models.UnifiedHolding, error) {
	return s.storage.Holdings().ListHoldings(ctx)
}

// Ensure Service implements AccountService
var _ interfaces.AccountService = (*Service)(nil)
