package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelspin/models"
	"reelspin/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ledger     *MockLedgerService
	controller *MockSpinController
	spinLog    *service.MockSpinLogService
	decisions  *service.MockDecisionProvider
	policy     service.PolicyService
	recorder   *requestRecorder
	router     http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		ledger:     new(MockLedgerService),
		controller: new(MockSpinController),
		spinLog:    new(service.MockSpinLogService),
		decisions:  new(service.MockDecisionProvider),
		policy:     service.NewPolicyService(models.DefaultWinPolicy(map[int]int64{2: 100000}), nil, nil),
		recorder:   &requestRecorder{},
	}
	f.router = NewRouter(Deps{
		Ledger:     f.ledger,
		Policy:     f.policy,
		Decisions:  f.decisions,
		Controller: f.controller,
		SpinLog:    f.spinLog,
		Metrics:    f.recorder,
	})
	return f
}

func (f *fixture) do(method, path, accountID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set(AccountHeader, accountID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAccountHeaderRequired(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/balance", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/balance", strings.Repeat("x", maxAccountIDLength+1), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.ledger.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
}

func TestBalance(t *testing.T) {
	f := newFixture()
	f.ledger.On("GetBalance", mock.Anything, "player-1").Return(int64(100000), nil)
	f.ledger.On("SetBalance", mock.Anything, "player-1", int64(2500)).Return(int64(2500), nil)
	f.ledger.On("SetBalance", mock.Anything, "player-1", int64(-1)).Return(int64(0), service.ErrInvalidAmount)

	rec := f.do(http.MethodGet, "/api/balance", "player-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, balanceResponse{AccountID: "player-1", Balance: 100000}, decodeBody[balanceResponse](t, rec))

	rec = f.do(http.MethodPost, "/api/balance", "player-1", `{"balance":2500}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2500), decodeBody[balanceResponse](t, rec).Balance)

	rec = f.do(http.MethodPost, "/api/balance", "player-1", `{"balance":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/balance", "player-1", `{"balance":"lots"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalanceStoreDown(t *testing.T) {
	f := newFixture()
	f.ledger.On("GetBalance", mock.Anything, "player-1").
		Return(int64(0), fmt.Errorf("%w: connection refused", service.ErrPersistenceUnavailable))

	rec := f.do(http.MethodGet, "/api/balance", "player-1", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSettings(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/settings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[int]int64{2: 100000}, decodeBody[models.WinPolicyConfig](t, rec).Schedule)

	rec = f.do(http.MethodPost, "/api/settings", "",
		`{"autoMode":true,"winProbabilityPercent":140,"minWinAmount":100,"maxWinAmount":200,"schedule":{"3":700}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	applied := decodeBody[models.WinPolicyConfig](t, rec)
	assert.True(t, applied.AutoMode)
	assert.Equal(t, 100, applied.WinProbabilityPercent)
	assert.Equal(t, map[int]int64{3: 700}, applied.Schedule)
	assert.Equal(t, 100, f.policy.Snapshot().WinProbabilityPercent)

	rec = f.do(http.MethodPost, "/api/settings", "", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecision(t *testing.T) {
	f := newFixture()
	f.decisions.On("RequestDecision", mock.Anything, 2, int64(100)).
		Return(models.OutcomeDecision{IsWin: true, WinAmount: 100000}, nil)
	f.decisions.On("RequestDecision", mock.Anything, 3, int64(100)).
		Return(models.OutcomeDecision{}, errors.New("policy service down"))

	rec := f.do(http.MethodPost, "/api/decision", "", `{"spinIndex":2,"betAmount":100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isWin":true,"winAmount":100000}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/decision", "", `{"spinIndex":3,"betAmount":100}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(http.MethodPost, "/api/decision", "", `{"spinIndex":0,"betAmount":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpin(t *testing.T) {
	result := &models.SpinResult{
		AccountID: "player-1",
		SpinIndex: 1,
		BetAmount: 100,
		Symbols:   models.ReelSymbols{models.SymbolCherry, models.SymbolLemon, models.SymbolBell},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"settled", nil, http.StatusOK},
		{"invalid bet", service.ErrInvalidBet, http.StatusBadRequest},
		{"insufficient funds", fmt.Errorf("%w: %w", service.ErrInvalidBet, service.ErrInsufficientFunds), http.StatusBadRequest},
		{"in progress", service.ErrSpinInProgress, http.StatusConflict},
		{"stale", service.ErrStaleRequest, http.StatusConflict},
		{"store down", service.ErrPersistenceUnavailable, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			want := models.SpinRequest{AccountID: "player-1", BetAmount: 100, SequenceNumber: 4}
			if tt.err != nil {
				f.controller.On("Spin", mock.Anything, want).Return(nil, tt.err)
			} else {
				f.controller.On("Spin", mock.Anything, want).Return(result, nil)
			}

			rec := f.do(http.MethodPost, "/api/spin", "player-1", `{"betAmount":100,"sequenceNumber":4}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.err == nil {
				assert.Equal(t, 1, decodeBody[models.SpinResult](t, rec).SpinIndex)
			}
			f.controller.AssertExpectations(t)
		})
	}
}

func TestAutoSpin(t *testing.T) {
	f := newFixture()
	running := models.SpinSessionState{AccountID: "player-1", AutoSpinEnabled: true, AutoSpinRemaining: 10, AutoSpinBet: 100}
	stopped := models.SpinSessionState{AccountID: "player-1"}

	f.controller.On("StartAutoSpin", mock.Anything, "player-1", int64(100), 10).Return(nil)
	f.controller.On("Session", "player-1").Return(running).Once()

	rec := f.do(http.MethodPost, "/api/autospin", "player-1", `{"betAmount":100,"count":10}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, running, decodeBody[models.SpinSessionState](t, rec))

	f.controller.On("StopAutoSpin", "player-1").Return()
	f.controller.On("Session", "player-1").Return(stopped).Once()

	rec = f.do(http.MethodDelete, "/api/autospin", "player-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[models.SpinSessionState](t, rec).AutoSpinEnabled)

	f.controller.On("StartAutoSpin", mock.Anything, "player-1", int64(0), 1).Return(service.ErrInvalidBet)
	rec = f.do(http.MethodPost, "/api/autospin", "player-1", `{"betAmount":0,"count":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.controller.AssertExpectations(t)
}

func TestTurboAndSession(t *testing.T) {
	f := newFixture()
	state := models.SpinSessionState{AccountID: "player-1", TurboEnabled: true}

	f.controller.On("SetTurbo", "player-1", true).Return()
	f.controller.On("Session", "player-1").Return(state)

	rec := f.do(http.MethodPost, "/api/turbo", "player-1", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.SpinSessionState](t, rec).TurboEnabled)

	rec = f.do(http.MethodGet, "/api/session", "player-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, state, decodeBody[models.SpinSessionState](t, rec))
}

func TestSpinLog(t *testing.T) {
	f := newFixture()
	f.spinLog.On("LogSpinResult", mock.Anything, "player-1", models.SpinStatusWin, int64(50000)).Return(nil)
	f.spinLog.On("Stats", mock.Anything).Return(&models.SpinStats{WinTotal: 50000, WinCount: 1, WinRate: 100}, nil)

	rec := f.do(http.MethodPost, "/api/log", "player-1", `{"status":"WIN","amount":50000}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/log", "player-1", `{"status":"DRAW","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[models.SpinStats](t, rec)
	assert.Equal(t, int64(50000), stats.WinTotal)
	assert.Equal(t, float64(100), stats.WinRate)

	f.spinLog.AssertNumberOfCalls(t, "LogSpinResult", 1)
}

func TestRequestsAreRecorded(t *testing.T) {
	f := newFixture()
	f.ledger.On("GetBalance", mock.Anything, "player-1").Return(int64(1), nil)

	f.do(http.MethodGet, "/api/balance", "player-1", "")
	f.do(http.MethodGet, "/api/balance", "", "")

	require.Len(t, f.recorder.requests, 2)
	assert.Equal(t, recordedRequest{route: "/api/balance", status: http.StatusOK}, f.recorder.requests[0])
	assert.Equal(t, http.StatusUnauthorized, f.recorder.requests[1].status)
}

func TestRequestContextCarriesAccount(t *testing.T) {
	var seen string
	h := requireAccount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = accountFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AccountHeader, "  player-9 ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "player-9", seen)
	assert.Empty(t, accountFrom(context.Background()))
}
