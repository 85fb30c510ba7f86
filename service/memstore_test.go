package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"reelspin/events"
	"reelspin/models"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory UnitOfWorkFactory. Writes are staged per unit of work and
// applied on Commit, so a failed commit leaves the store untouched.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]int64
	history  []*models.BalanceHistory
	spinLog  []*models.SpinLogEntry
	events   []events.Event

	down    atomic.Bool // every Begin fails
	commits atomic.Int64
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]int64)}
}

func (s *memStore) Create() UnitOfWork {
	return &memUnitOfWork{store: s}
}

func (s *memStore) balance(accountID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.accounts[accountID]
	return b, ok
}

func (s *memStore) historyFor(accountID string) []*models.BalanceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.BalanceHistory
	for _, h := range s.history {
		if h.AccountID == accountID {
			out = append(out, h)
		}
	}
	return out
}

func (s *memStore) spinLogEntries() []*models.SpinLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.SpinLogEntry(nil), s.spinLog...)
}

func (s *memStore) eventsOfType(t events.EventType) []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, e := range s.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

type memUnitOfWork struct {
	store   *memStore
	started bool
	ops     []func(*memStore)
	pending []events.Event
}

func (u *memUnitOfWork) Begin(ctx context.Context) error {
	if u.store.down.Load() {
		return errStoreDown
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.started = true
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}
	if u.store.down.Load() {
		return errStoreDown
	}

	u.store.mu.Lock()
	for _, op := range u.ops {
		op(u.store)
	}
	u.store.events = append(u.store.events, u.pending...)
	u.store.mu.Unlock()

	u.store.commits.Add(1)
	u.started = false
	u.ops = nil
	u.pending = nil
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	u.started = false
	u.ops = nil
	u.pending = nil
	return nil
}

func (u *memUnitOfWork) AccountRepository() AccountRepository {
	return memAccounts{u}
}

func (u *memUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return memHistory{u}
}

func (u *memUnitOfWork) SpinLogRepository() SpinLogRepository {
	return memSpinLog{u}
}

func (u *memUnitOfWork) EventBus() EventPublisher {
	return memPublisher{u}
}

type memAccounts struct{ u *memUnitOfWork }

func (r memAccounts) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	balance, ok := r.u.store.balance(accountID)
	if !ok {
		return nil, nil
	}
	return &models.Account{AccountID: accountID, Balance: balance}, nil
}

func (r memAccounts) Create(ctx context.Context, accountID string, initialBalance int64) (*models.Account, error) {
	if _, ok := r.u.store.balance(accountID); ok {
		return nil, fmt.Errorf("account %s already exists", accountID)
	}
	r.u.ops = append(r.u.ops, func(s *memStore) { s.accounts[accountID] = initialBalance })
	return &models.Account{AccountID: accountID, Balance: initialBalance}, nil
}

func (r memAccounts) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	if newBalance < 0 {
		return fmt.Errorf("negative balance %d", newBalance)
	}
	r.u.ops = append(r.u.ops, func(s *memStore) { s.accounts[accountID] = newBalance })
	return nil
}

type memHistory struct{ u *memUnitOfWork }

func (r memHistory) Record(ctx context.Context, history *models.BalanceHistory) error {
	r.u.ops = append(r.u.ops, func(s *memStore) { s.history = append(s.history, history) })
	return nil
}

func (r memHistory) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error) {
	all := r.u.store.historyFor(accountID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type memSpinLog struct{ u *memUnitOfWork }

func (r memSpinLog) Record(ctx context.Context, entry *models.SpinLogEntry) error {
	r.u.ops = append(r.u.ops, func(s *memStore) { s.spinLog = append(s.spinLog, entry) })
	return nil
}

func (r memSpinLog) GetTotals(ctx context.Context, accountID string) (*models.SpinTotals, error) {
	var totals models.SpinTotals
	for _, e := range r.u.store.spinLogEntries() {
		if accountID != "" && e.AccountID != accountID {
			continue
		}
		if e.Status == models.SpinStatusWin {
			totals.WinTotal += e.Amount
			totals.WinCount++
		} else {
			totals.LoseTotal += e.Amount
			totals.LoseCount++
		}
	}
	return &totals, nil
}

type memPublisher struct{ u *memUnitOfWork }

func (p memPublisher) Publish(event events.Event) error {
	p.u.pending = append(p.u.pending, event)
	return nil
}

// recordingPublisher collects events published outside a unit of work
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// sequenceRandom replays fixed draws, clamped into range
type sequenceRandom struct {
	mu    sync.Mutex
	draws []int
	next  int
}

func (r *sequenceRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.draws) == 0 {
		return 0
	}
	v := r.draws[r.next%len(r.draws)]
	r.next++
	return min(max(v, 0), n-1)
}

// decisionFunc adapts a function to DecisionProvider
type decisionFunc func(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error)

func (f decisionFunc) RequestDecision(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error) {
	return f(ctx, spinIndex, betAmount)
}
