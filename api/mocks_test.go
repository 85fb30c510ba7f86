package api

import (
	"context"
	"time"

	"reelspin/models"
	"reelspin/service"

	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) SetBalance(ctx context.Context, accountID string, balance int64) (int64, error) {
	args := m.Called(ctx, accountID, balance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, accountID string, amount int64) (int64, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Settle(ctx context.Context, accountID string, betAmount int64, decision models.OutcomeDecision) (*service.Settlement, error) {
	args := m.Called(ctx, accountID, betAmount, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Settlement), args.Error(1)
}

func (m *MockLedgerService) SettleWith(ctx context.Context, accountID string, betAmount int64, resolve service.DecisionFunc) (*service.Settlement, error) {
	args := m.Called(ctx, accountID, betAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Settlement), args.Error(1)
}

func (m *MockLedgerService) SyncDirty(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockSpinController struct {
	mock.Mock
}

func (m *MockSpinController) Spin(ctx context.Context, req models.SpinRequest) (*models.SpinResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpinResult), args.Error(1)
}

func (m *MockSpinController) StartAutoSpin(ctx context.Context, accountID string, betAmount int64, count int) error {
	return m.Called(ctx, accountID, betAmount, count).Error(0)
}

func (m *MockSpinController) StopAutoSpin(accountID string) {
	m.Called(accountID)
}

func (m *MockSpinController) SetTurbo(accountID string, enabled bool) {
	m.Called(accountID, enabled)
}

func (m *MockSpinController) Session(accountID string) models.SpinSessionState {
	return m.Called(accountID).Get(0).(models.SpinSessionState)
}

func (m *MockSpinController) Shutdown() {
	m.Called()
}

type recordedRequest struct {
	route  string
	status int
}

type requestRecorder struct {
	requests []recordedRequest
}

func (r *requestRecorder) RecordHTTPRequest(route string, status int, _ time.Duration) {
	r.requests = append(r.requests, recordedRequest{route: route, status: status})
}
