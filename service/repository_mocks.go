package service

import (
	"context"

	"reelspin/events"
	"reelspin/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, accountID string, initialBalance int64) (*models.Account, error) {
	args := m.Called(ctx, accountID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	args := m.Called(ctx, accountID, newBalance)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockSpinLogRepository is a mock implementation of SpinLogRepository
type MockSpinLogRepository struct {
	mock.Mock
}

func (m *MockSpinLogRepository) Record(ctx context.Context, entry *models.SpinLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSpinLogRepository) GetTotals(ctx context.Context, accountID string) (*models.SpinTotals, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpinTotals), args.Error(1)
}

// MockPolicyRepository is a mock implementation of PolicyRepository
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) Get(ctx context.Context) (*models.WinPolicyConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WinPolicyConfig), args.Error(1)
}

func (m *MockPolicyRepository) Save(ctx context.Context, cfg models.WinPolicyConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are plain fields set
// through SetRepositories rather than expectations.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo        AccountRepository
	balanceHistoryRepo BalanceHistoryRepository
	spinLogRepo        SpinLogRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repositories and publisher returned by the getters
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, history BalanceHistoryRepository, spinLog SpinLogRepository, bus EventPublisher) {
	m.accountRepo = accounts
	m.balanceHistoryRepo = history
	m.spinLogRepo = spinLog
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) SpinLogRepository() SpinLogRepository {
	return m.spinLogRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockDecisionProvider is a mock implementation of DecisionProvider
type MockDecisionProvider struct {
	mock.Mock
}

func (m *MockDecisionProvider) RequestDecision(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error) {
	args := m.Called(ctx, spinIndex, betAmount)
	return args.Get(0).(models.OutcomeDecision), args.Error(1)
}

// MockSpinLogService is a mock implementation of SpinLogService
type MockSpinLogService struct {
	mock.Mock
}

func (m *MockSpinLogService) LogSpinResult(ctx context.Context, accountID string, status models.SpinStatus, amount int64) error {
	args := m.Called(ctx, accountID, status, amount)
	return args.Error(0)
}

func (m *MockSpinLogService) Stats(ctx context.Context) (*models.SpinStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpinStats), args.Error(1)
}

func (m *MockSpinLogService) WinTotal(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
