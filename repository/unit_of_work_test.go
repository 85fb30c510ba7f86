package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"reelspin/events"
	"reelspin/models"
	"reelspin/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	bus := events.NewBus()
	var (
		mu       sync.Mutex
		received []events.Event
	)
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.AccountRepository().Create(ctx, "player-1", 100000)
	require.NoError(t, err)
	require.NoError(t, uow.EventBus().Publish(events.AccountCreatedEvent{AccountID: "player-1", InitialBalance: 100000}))

	mu.Lock()
	assert.Empty(t, received, "events must wait for commit")
	mu.Unlock()

	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "player-1")
	require.NoError(t, err)
	require.NotNil(t, account)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	bus := events.NewBus()
	delivered := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeSpinLogged, func(ctx context.Context, e events.Event) {
		delivered <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.SpinLogRepository().Record(ctx, testutil.CreateTestSpinLogEntry("player-1", models.SpinStatusWin, 100)))
	require.NoError(t, uow.EventBus().Publish(events.SpinLoggedEvent{AccountID: "player-1", Status: models.SpinStatusWin, Amount: 100}))
	require.NoError(t, uow.Rollback())

	select {
	case <-delivered:
		t.Fatal("rolled back event was delivered")
	case <-time.After(100 * time.Millisecond):
	}

	totals, err := NewSpinLogRepository(testDB.DB).GetTotals(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, totals.WinCount)
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	uow := &unitOfWork{}
	assert.Panics(t, func() { uow.AccountRepository() })
	assert.Panics(t, func() { uow.BalanceHistoryRepository() })
	assert.Panics(t, func() { uow.SpinLogRepository() })
	assert.Error(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}
