package service

import (
	"math"
	"testing"

	"reelspin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeService_ScheduleMode(t *testing.T) {
	cfg := models.WinPolicyConfig{
		AutoMode: false,
		Schedule: map[int]int64{2: 100000, 4: 100000},
	}
	svc := NewOutcomeService(NewSeededRandom(1))

	for spinIndex := 1; spinIndex <= 10; spinIndex++ {
		decision := svc.Decide(cfg, spinIndex, 1000)
		if spinIndex == 2 || spinIndex == 4 {
			assert.Equal(t, models.OutcomeDecision{IsWin: true, WinAmount: 100000}, decision, "spin %d", spinIndex)
		} else {
			assert.Equal(t, models.LossDecision(), decision, "spin %d", spinIndex)
		}
	}
}

func TestOutcomeService_ScheduleModeIsDeterministic(t *testing.T) {
	cfg := models.WinPolicyConfig{Schedule: map[int]int64{3: 7000}}
	a := NewOutcomeService(NewSeededRandom(1))
	b := NewOutcomeService(NewSeededRandom(99))

	for spinIndex := 1; spinIndex <= 10; spinIndex++ {
		assert.Equal(t, a.Decide(cfg, spinIndex, 500), b.Decide(cfg, spinIndex, 500))
	}
}

func TestOutcomeService_ScheduleFallbackPaysFiveTimesBet(t *testing.T) {
	cfg := models.WinPolicyConfig{Schedule: map[int]int64{1: 0, 2: -50}}
	svc := NewOutcomeService(nil)

	assert.Equal(t, models.OutcomeDecision{IsWin: true, WinAmount: 5000}, svc.Decide(cfg, 1, 1000))
	assert.Equal(t, models.OutcomeDecision{IsWin: true, WinAmount: 2500}, svc.Decide(cfg, 2, 500))
}

func TestOutcomeService_ScheduleFallbackWithZeroBetIsLoss(t *testing.T) {
	cfg := models.WinPolicyConfig{Schedule: map[int]int64{1: 0}}
	svc := NewOutcomeService(nil)

	assert.Equal(t, models.LossDecision(), svc.Decide(cfg, 1, 0))
}

func TestOutcomeService_ProbabilityBounds(t *testing.T) {
	cfg := models.WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 30,
		MinWinAmount:          1000,
		MaxWinAmount:          2000,
	}
	svc := NewOutcomeService(NewSeededRandom(42))

	const spins = 10000
	wins := 0
	for i := 1; i <= spins; i++ {
		decision := svc.Decide(cfg, i, 100)
		if !decision.IsWin {
			assert.Zero(t, decision.WinAmount)
			continue
		}
		wins++
		require.GreaterOrEqual(t, decision.WinAmount, int64(1000))
		require.LessOrEqual(t, decision.WinAmount, int64(2000))
	}

	rate := float64(wins) / spins
	assert.InDelta(t, 0.30, rate, 0.03)
}

func TestOutcomeService_ProbabilityExtremes(t *testing.T) {
	svc := NewOutcomeService(NewSeededRandom(7))

	never := models.WinPolicyConfig{AutoMode: true, WinProbabilityPercent: 0, MinWinAmount: 10, MaxWinAmount: 20}
	always := models.WinPolicyConfig{AutoMode: true, WinProbabilityPercent: 100, MinWinAmount: 10, MaxWinAmount: 20}

	for i := 0; i < 1000; i++ {
		assert.False(t, svc.Decide(never, i, 1).IsWin)
		assert.True(t, svc.Decide(always, i, 1).IsWin)
	}
}

func TestOutcomeService_ProbabilityIgnoresSchedule(t *testing.T) {
	cfg := models.WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 0,
		Schedule:              map[int]int64{1: 100000},
	}
	svc := NewOutcomeService(NewSeededRandom(3))

	assert.False(t, svc.Decide(cfg, 1, 100).IsWin)
}

func TestOutcomeService_InvertedBoundsResolveToMinimum(t *testing.T) {
	tests := []struct {
		name     string
		min, max int64
		want     int64
	}{
		{"inverted", 50000, 30000, 50000},
		{"equal", 40000, 40000, 40000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.WinPolicyConfig{
				AutoMode:              true,
				WinProbabilityPercent: 100,
				MinWinAmount:          tt.min,
				MaxWinAmount:          tt.max,
			}
			svc := NewOutcomeService(NewSeededRandom(5))
			for i := 0; i < 100; i++ {
				assert.Equal(t, tt.want, svc.Decide(cfg, i, 1).WinAmount)
			}
		})
	}
}

func TestOutcomeService_ZeroAmountWinIsNormalizedToLoss(t *testing.T) {
	cfg := models.WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 100,
		MinWinAmount:          0,
		MaxWinAmount:          0,
	}
	svc := NewOutcomeService(NewSeededRandom(11))

	assert.Equal(t, models.LossDecision(), svc.Decide(cfg, 1, 100))
}

func TestSeededRandom_Reproducible(t *testing.T) {
	a := NewSeededRandom(1234)
	b := NewSeededRandom(1234)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestOutcomeService_FullRangeDrawStaysInBounds(t *testing.T) {
	tests := []struct {
		name string
		min  int64
	}{
		{"from zero", 0},
		{"from one", 1},
		{"from five", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.WinPolicyConfig{
				AutoMode:              true,
				WinProbabilityPercent: 100,
				MinWinAmount:          tt.min,
				MaxWinAmount:          math.MaxInt64,
			}.Clamp()
			svc := NewOutcomeService(&sequenceRandom{draws: []int{0, math.MaxInt}})

			var decision models.OutcomeDecision
			require.NotPanics(t, func() { decision = svc.Decide(cfg, 1, 100) })
			assert.True(t, decision.IsWin)
			assert.GreaterOrEqual(t, decision.WinAmount, tt.min)
		})
	}

	seeded := NewOutcomeService(NewSeededRandom(3))
	cfg := models.WinPolicyConfig{AutoMode: true, WinProbabilityPercent: 100, MaxWinAmount: math.MaxInt64}
	for i := 0; i < 100; i++ {
		decision := seeded.Decide(cfg, i+1, 100)
		assert.GreaterOrEqual(t, decision.WinAmount, int64(0))
	}
}

func TestOutcomeService_ScheduleFallbackSaturates(t *testing.T) {
	cfg := models.WinPolicyConfig{Schedule: map[int]int64{1: 0}}
	svc := NewOutcomeService(nil)

	decision := svc.Decide(cfg, 1, math.MaxInt64/2)
	assert.Equal(t, models.OutcomeDecision{IsWin: true, WinAmount: math.MaxInt64}, decision)

	decision = svc.Decide(cfg, 1, math.MaxInt64/ScheduledFallbackMultiplier)
	assert.Equal(t, int64(math.MaxInt64/ScheduledFallbackMultiplier*ScheduledFallbackMultiplier), decision.WinAmount)
}
