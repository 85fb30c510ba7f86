package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"reelspin/events"
	"reelspin/models"

	log "github.com/sirupsen/logrus"
)

const (
	persistTimeout = 5 * time.Second
	spinLogTimeout = 2 * time.Second
)

// ledgerAccount is the in-memory authority for one account's balance.
// writeMu serializes loading, mutation and persistence; mu only guards what readers see.
type ledgerAccount struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	loaded  bool
	balance int64

	// guarded by writeMu
	dirty   bool
	unsaved []*models.BalanceHistory
}

type ledgerService struct {
	uowFactory      UnitOfWorkFactory
	spinLog         SpinLogService
	startingBalance int64

	mu       sync.Mutex
	accounts map[string]*ledgerAccount
}

// NewLedgerService creates the balance ledger. spinLog may be nil.
func NewLedgerService(uowFactory UnitOfWorkFactory, spinLog SpinLogService, startingBalance int64) LedgerService {
	return &ledgerService{
		uowFactory:      uowFactory,
		spinLog:         spinLog,
		startingBalance: startingBalance,
		accounts:        make(map[string]*ledgerAccount),
	}
}

func (l *ledgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	acct := l.account(accountID)

	acct.mu.RLock()
	if acct.loaded {
		balance := acct.balance
		acct.mu.RUnlock()
		return balance, nil
	}
	acct.mu.RUnlock()

	acct.writeMu.Lock()
	defer acct.writeMu.Unlock()
	if err := l.load(ctx, accountID, acct); err != nil {
		return 0, err
	}
	return acct.committed(), nil
}

func (l *ledgerService) SetBalance(ctx context.Context, accountID string, balance int64) (int64, error) {
	_, after, err := l.mutate(ctx, accountID, func(before int64) (int64, []*models.BalanceHistory, error) {
		if balance < 0 {
			return 0, nil, fmt.Errorf("%w: balance %d is negative", ErrInvalidAmount, balance)
		}
		if balance == before {
			return before, nil, nil
		}
		return balance, []*models.BalanceHistory{
			historyEntry(accountID, before, balance, models.TransactionTypeBalanceSet, nil),
		}, nil
	})
	return after, err
}

func (l *ledgerService) Debit(ctx context.Context, accountID string, amount int64) (int64, error) {
	_, after, err := l.mutate(ctx, accountID, func(before int64) (int64, []*models.BalanceHistory, error) {
		if err := checkDebit(before, amount); err != nil {
			return 0, nil, err
		}
		return before - amount, []*models.BalanceHistory{
			historyEntry(accountID, before, before-amount, models.TransactionTypeSpinBet, nil),
		}, nil
	})
	return after, err
}

func (l *ledgerService) Credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	_, after, err := l.mutate(ctx, accountID, func(before int64) (int64, []*models.BalanceHistory, error) {
		if amount < 0 {
			return 0, nil, fmt.Errorf("%w: credit of %d", ErrInvalidAmount, amount)
		}
		if amount == 0 {
			return before, nil, nil
		}
		if amount > creditHeadroom(before) {
			return 0, nil, fmt.Errorf("%w: credit of %d overflows balance %d", ErrInvalidAmount, amount, before)
		}
		return before + amount, []*models.BalanceHistory{
			historyEntry(accountID, before, before+amount, models.TransactionTypeSpinWin, nil),
		}, nil
	})
	return after, err
}

func (l *ledgerService) Settle(ctx context.Context, accountID string, betAmount int64, decision models.OutcomeDecision) (*Settlement, error) {
	return l.SettleWith(ctx, accountID, betAmount, func(context.Context) (models.OutcomeDecision, error) {
		return decision, nil
	})
}

func (l *ledgerService) SettleWith(ctx context.Context, accountID string, betAmount int64, resolve DecisionFunc) (*Settlement, error) {
	settlement := &Settlement{}

	before, after, err := l.mutate(ctx, accountID, func(before int64) (int64, []*models.BalanceHistory, error) {
		if err := checkDebit(before, betAmount); err != nil {
			return 0, nil, err
		}
		afterDebit := before - betAmount

		decision, err := resolve(ctx)
		if err != nil {
			log.WithFields(log.Fields{
				"accountID": accountID,
				"betAmount": betAmount,
				"error":     err,
			}).Warn("Decision unavailable after debit, bet forfeited")
			decision = models.LossDecision()
			settlement.DecisionFailed = true
		}
		// A win larger than the balance can hold pays only up to the limit
		if decision.IsWin && decision.WinAmount > creditHeadroom(afterDebit) {
			decision.WinAmount = creditHeadroom(afterDebit)
		}
		decision = decision.Normalize()
		settlement.Decision = decision

		meta := map[string]any{"bet_amount": betAmount, "is_win": decision.IsWin}
		records := []*models.BalanceHistory{
			historyEntry(accountID, before, afterDebit, models.TransactionTypeSpinBet, meta),
		}
		if !decision.IsWin {
			return afterDebit, records, nil
		}
		records = append(records, historyEntry(accountID, afterDebit, afterDebit+decision.WinAmount, models.TransactionTypeSpinWin, meta))
		return afterDebit + decision.WinAmount, records, nil
	})
	if err != nil {
		return nil, err
	}

	settlement.BalanceBefore = before
	settlement.NewBalance = after

	if settlement.Decision.IsWin {
		l.logSpin(ctx, accountID, models.SpinStatusWin, settlement.Decision.WinAmount)
	} else {
		l.logSpin(ctx, accountID, models.SpinStatusLose, betAmount)
	}

	return settlement, nil
}

func (l *ledgerService) SyncDirty(ctx context.Context) error {
	l.mu.Lock()
	pending := make(map[string]*ledgerAccount, len(l.accounts))
	for id, acct := range l.accounts {
		pending[id] = acct
	}
	l.mu.Unlock()

	failed := 0
	for accountID, acct := range pending {
		acct.writeMu.Lock()
		if acct.dirty && !l.persist(ctx, accountID, acct) {
			failed++
		}
		acct.writeMu.Unlock()
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d accounts still unsynced", ErrPersistenceUnavailable, failed)
	}
	return nil
}

func (l *ledgerService) account(accountID string) *ledgerAccount {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[accountID]
	if !ok {
		acct = &ledgerAccount{}
		l.accounts[accountID] = acct
	}
	return acct
}

// mutate applies fn to the committed balance as one unit. Readers observe either the old or
// the new balance. Must not be called while holding acct.writeMu.
func (l *ledgerService) mutate(ctx context.Context, accountID string, fn func(before int64) (int64, []*models.BalanceHistory, error)) (int64, int64, error) {
	acct := l.account(accountID)

	acct.writeMu.Lock()
	defer acct.writeMu.Unlock()

	if err := l.load(ctx, accountID, acct); err != nil {
		return 0, 0, err
	}

	before := acct.committed()
	after, records, err := fn(before)
	if err != nil {
		return before, before, err
	}
	if len(records) == 0 {
		return before, before, nil
	}

	acct.mu.Lock()
	acct.balance = after
	acct.mu.Unlock()

	acct.unsaved = append(acct.unsaved, records...)
	acct.dirty = true
	l.persist(ctx, accountID, acct)

	return before, after, nil
}

// load reads the account from the store, creating it with the starting balance on first contact.
// Caller holds acct.writeMu.
func (l *ledgerService) load(ctx context.Context, accountID string, acct *ledgerAccount) error {
	acct.mu.RLock()
	loaded := acct.loaded
	acct.mu.RUnlock()
	if loaded {
		return nil
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrPersistenceUnavailable, err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%w: failed to load account %s: %w", ErrPersistenceUnavailable, accountID, err)
	}

	if account == nil {
		account, err = uow.AccountRepository().Create(ctx, accountID, l.startingBalance)
		if err != nil {
			return fmt.Errorf("%w: failed to create account %s: %w", ErrPersistenceUnavailable, accountID, err)
		}

		history := historyEntry(accountID, 0, account.Balance, models.TransactionTypeInitial, nil)
		if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
			return fmt.Errorf("%w: failed to record initial balance: %w", ErrPersistenceUnavailable, err)
		}
		if err := uow.EventBus().Publish(events.AccountCreatedEvent{
			AccountID:      accountID,
			InitialBalance: account.Balance,
		}); err != nil {
			return fmt.Errorf("failed to publish account created event: %w", err)
		}

		log.WithFields(log.Fields{
			"accountID":      accountID,
			"initialBalance": account.Balance,
		}).Info("Created account on first contact")
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit account load: %w", ErrPersistenceUnavailable, err)
	}

	acct.mu.Lock()
	acct.balance = account.Balance
	acct.loaded = true
	acct.mu.Unlock()
	return nil
}

// persist writes the committed balance and unsaved history. Failures leave the account dirty
// for the next mutation or sync. Caller holds acct.writeMu.
func (l *ledgerService) persist(ctx context.Context, accountID string, acct *ledgerAccount) bool {
	// Settlement has already happened in memory; a caller going away must not stop the write
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	balance := acct.committed()
	err := l.writeBalance(ctx, accountID, balance, acct.unsaved)
	if err != nil {
		log.WithFields(log.Fields{
			"accountID":     accountID,
			"balance":       balance,
			"unsavedEvents": len(acct.unsaved),
			"error":         err,
		}).Warn("Balance persistence unavailable, will retry")
		return false
	}

	acct.dirty = false
	acct.unsaved = nil
	return true
}

func (l *ledgerService) writeBalance(ctx context.Context, accountID string, balance int64, records []*models.BalanceHistory) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().UpdateBalance(ctx, accountID, balance); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	for _, history := range records {
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit balance: %w", err)
	}
	return nil
}

func (l *ledgerService) logSpin(ctx context.Context, accountID string, status models.SpinStatus, amount int64) {
	if l.spinLog == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), spinLogTimeout)
	defer cancel()

	if err := l.spinLog.LogSpinResult(ctx, accountID, status, amount); err != nil {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"status":    status,
			"amount":    amount,
			"error":     err,
		}).Warn("Failed to log spin result")
	}
}

func (a *ledgerAccount) committed() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

func checkDebit(balance, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit of %d", ErrInvalidAmount, amount)
	}
	if amount > balance {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, amount)
	}
	return nil
}

func creditHeadroom(balance int64) int64 {
	return math.MaxInt64 - balance
}

func historyEntry(accountID string, before, after int64, txType models.TransactionType, meta map[string]any) *models.BalanceHistory {
	return &models.BalanceHistory{
		AccountID:           accountID,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        after - before,
		TransactionType:     txType,
		TransactionMetadata: meta,
	}
}
