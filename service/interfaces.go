package service

import (
	"context"

	"reelspin/events"
	"reelspin/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account, returning nil when it does not exist
	GetByID(ctx context.Context, accountID string) (*models.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, accountID string, initialBalance int64) (*models.Account, error)

	// UpdateBalance overwrites an account's balance
	UpdateBalance(ctx context.Context, accountID string, newBalance int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByAccount returns the most recent balance history for an account
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error)
}

// SpinLogRepository defines the interface for the WIN/LOSE spin log
type SpinLogRepository interface {
	// Record appends an entry to the spin log
	Record(ctx context.Context, entry *models.SpinLogEntry) error

	// GetTotals aggregates the whole log, optionally restricted to one account
	GetTotals(ctx context.Context, accountID string) (*models.SpinTotals, error)
}

// PolicyRepository defines the interface for persisted outcome policy settings
type PolicyRepository interface {
	// Get returns the saved policy, or nil if none has been saved yet
	Get(ctx context.Context) (*models.WinPolicyConfig, error)

	// Save replaces the saved policy and schedule
	Save(ctx context.Context, cfg models.WinPolicyConfig) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases queued events
	Commit() error

	// Rollback rolls back the transaction; a no-op after Commit
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	SpinLogRepository() SpinLogRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// RandomSource supplies uniform integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// OutcomeService decides spin outcomes from a policy snapshot
type OutcomeService interface {
	// Decide returns the normalized decision for a spin. It performs no I/O.
	Decide(cfg models.WinPolicyConfig, spinIndex int, betAmount int64) models.OutcomeDecision
}

// DecisionProvider resolves the decision for a spin, locally or through a remote policy service
type DecisionProvider interface {
	RequestDecision(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error)
}

// PolicyService owns the process-wide outcome policy
type PolicyService interface {
	// Snapshot returns the current policy. The returned value is never mutated afterwards.
	Snapshot() models.WinPolicyConfig

	// Update clamps, applies and publishes a new policy, returning what was applied.
	// A failed save is retried by SyncPending and never rejects the update.
	Update(ctx context.Context, cfg models.WinPolicyConfig) models.WinPolicyConfig

	// Load replaces the in-memory policy with the persisted one, if any
	Load(ctx context.Context) error

	// SyncPending retries saving a policy whose last save failed
	SyncPending(ctx context.Context) error
}

// DecisionFunc resolves a spin decision once the bet has been debited
type DecisionFunc func(ctx context.Context) (models.OutcomeDecision, error)

// Settlement is the committed outcome of a ledger settlement
type Settlement struct {
	BalanceBefore  int64
	NewBalance     int64
	Decision       models.OutcomeDecision
	DecisionFailed bool
}

// LedgerService maintains authoritative balances
type LedgerService interface {
	// GetBalance returns the committed balance, creating the account on first contact
	GetBalance(ctx context.Context, accountID string) (int64, error)

	// SetBalance overwrites the balance (last write wins)
	SetBalance(ctx context.Context, accountID string, balance int64) (int64, error)

	// Debit removes amount from the balance
	Debit(ctx context.Context, accountID string, amount int64) (int64, error)

	// Credit adds amount to the balance; zero is a successful no-op
	Credit(ctx context.Context, accountID string, amount int64) (int64, error)

	// Settle debits the bet and credits the decision's win as one unit
	Settle(ctx context.Context, accountID string, betAmount int64, decision models.OutcomeDecision) (*Settlement, error)

	// SettleWith debits the bet, then resolves the decision, then credits any win.
	// A failed resolution forfeits the bet.
	SettleWith(ctx context.Context, accountID string, betAmount int64, resolve DecisionFunc) (*Settlement, error)

	// SyncDirty retries persisting balances whose last write failed
	SyncDirty(ctx context.Context) error
}

// SpinLogService records spin telemetry and reports on it
type SpinLogService interface {
	// LogSpinResult appends a WIN or LOSE record
	LogSpinResult(ctx context.Context, accountID string, status models.SpinStatus, amount int64) error

	// Stats returns aggregate win/lose figures
	Stats(ctx context.Context) (*models.SpinStats, error)

	// WinTotal returns the sum of all logged wins
	WinTotal(ctx context.Context) (int64, error)
}

// SymbolMapper turns decisions into reel symbols
type SymbolMapper interface {
	Map(decision models.OutcomeDecision) models.ReelSymbols
}

// SpinController drives per-account spin sessions
type SpinController interface {
	// Spin runs one spin to completion
	Spin(ctx context.Context, req models.SpinRequest) (*models.SpinResult, error)

	// StartAutoSpin spins immediately and keeps spinning until count spins ran (0 = until stopped)
	StartAutoSpin(ctx context.Context, accountID string, betAmount int64, count int) error

	// StopAutoSpin cancels any scheduled auto spin
	StopAutoSpin(accountID string)

	// SetTurbo toggles the shortened auto-spin delay
	SetTurbo(accountID string, enabled bool)

	// Session returns a copy of the account's session state
	Session(accountID string) models.SpinSessionState

	// Shutdown cancels all auto-spin schedules
	Shutdown()
}
