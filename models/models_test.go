package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeDecision_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		decision OutcomeDecision
		expected OutcomeDecision
	}{
		{"win with payout", OutcomeDecision{IsWin: true, WinAmount: 500}, OutcomeDecision{IsWin: true, WinAmount: 500}},
		{"win with zero payout", OutcomeDecision{IsWin: true, WinAmount: 0}, LossDecision()},
		{"win with negative payout", OutcomeDecision{IsWin: true, WinAmount: -10}, LossDecision()},
		{"loss carrying an amount", OutcomeDecision{IsWin: false, WinAmount: 300}, LossDecision()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.decision.Normalize())
		})
	}
}

func TestWinPolicyConfig_Clamp(t *testing.T) {
	cfg := WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 150,
		MinWinAmount:          -5,
		MaxWinAmount:          -1,
		HouseWinCap:           -100,
		Schedule:              map[int]int64{-1: 10, 0: 20, 3: 30},
	}

	clamped := cfg.Clamp()

	assert.Equal(t, 100, clamped.WinProbabilityPercent)
	assert.Equal(t, int64(0), clamped.MinWinAmount)
	assert.Equal(t, int64(0), clamped.MaxWinAmount)
	assert.Equal(t, int64(0), clamped.HouseWinCap)
	assert.Equal(t, map[int]int64{3: 30}, clamped.Schedule)
	// Original left untouched
	assert.Len(t, cfg.Schedule, 3)

	cfg.WinProbabilityPercent = -20
	assert.Equal(t, 0, cfg.Clamp().WinProbabilityPercent)
}

func TestWinPolicyConfig_CloneIsDeep(t *testing.T) {
	cfg := DefaultWinPolicy(map[int]int64{2: 100000})
	clone := cfg.Clone()
	clone.Schedule[2] = 1

	assert.Equal(t, int64(100000), cfg.Schedule[2])
	assert.NotNil(t, WinPolicyConfig{}.Clone().Schedule)
}

func TestReelSymbols_IsTriple(t *testing.T) {
	assert.True(t, ReelSymbols{SymbolStar, SymbolStar, SymbolStar}.IsTriple())
	assert.False(t, ReelSymbols{SymbolStar, SymbolStar, SymbolBell}.IsTriple())
}

func TestNewSpinStats(t *testing.T) {
	stats := NewSpinStats(SpinTotals{WinTotal: 200000, LoseTotal: 100000, WinCount: 2, LoseCount: 10}, 5000000)

	assert.Equal(t, 66.67, stats.WinRate)
	assert.False(t, stats.TargetReached)

	stats = NewSpinStats(SpinTotals{WinTotal: 5000000}, 5000000)
	assert.Equal(t, float64(100), stats.WinRate)
	assert.True(t, stats.TargetReached)

	stats = NewSpinStats(SpinTotals{}, 0)
	assert.Equal(t, float64(0), stats.WinRate)
	assert.False(t, stats.TargetReached)
}
