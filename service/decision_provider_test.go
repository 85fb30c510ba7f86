package service

import (
	"context"
	"errors"
	"testing"

	"reelspin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedWinTotal struct {
	total int64
	err   error
}

func (f fixedWinTotal) WinTotal(context.Context) (int64, error) { return f.total, f.err }

func alwaysWinPolicy(houseWinCap int64) PolicyService {
	return NewPolicyService(models.WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 100,
		MinWinAmount:          500,
		MaxWinAmount:          500,
		HouseWinCap:           houseWinCap,
	}, nil, nil)
}

func TestLocalDecisionProvider_Decides(t *testing.T) {
	provider := NewLocalDecisionProvider(alwaysWinPolicy(0), NewOutcomeService(NewSeededRandom(1)), nil)

	decision, err := provider.RequestDecision(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDecision{IsWin: true, WinAmount: 500}, decision)
}

func TestLocalDecisionProvider_HouseWinCap(t *testing.T) {
	tests := []struct {
		name    string
		wins    WinTotaler
		wantWin bool
	}{
		{"below cap", fixedWinTotal{total: 999}, true},
		{"cap reached", fixedWinTotal{total: 1000}, false},
		{"total unavailable", fixedWinTotal{err: errors.New("db down")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewLocalDecisionProvider(alwaysWinPolicy(1000), NewOutcomeService(NewSeededRandom(1)), tt.wins)

			decision, err := provider.RequestDecision(context.Background(), 1, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWin, decision.IsWin)
		})
	}
}

func TestLocalDecisionProvider_CapIgnoredInScheduleMode(t *testing.T) {
	policy := NewPolicyService(models.WinPolicyConfig{
		Schedule:    map[int]int64{1: 700},
		HouseWinCap: 10,
	}, nil, nil)
	provider := NewLocalDecisionProvider(policy, NewOutcomeService(nil), fixedWinTotal{total: 1000000})

	decision, err := provider.RequestDecision(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(700), decision.WinAmount)
}

func TestLocalDecisionProvider_CancelledContext(t *testing.T) {
	provider := NewLocalDecisionProvider(alwaysWinPolicy(0), NewOutcomeService(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.RequestDecision(ctx, 1, 100)
	assert.ErrorIs(t, err, context.Canceled)
}
