package service

import (
	"math"
	"math/rand/v2"
	"sync"

	"reelspin/models"
)

// ScheduledFallbackMultiplier is applied to the bet when a scheduled win has no positive amount
const ScheduledFallbackMultiplier = 5

type outcomeService struct {
	rng RandomSource
}

// NewOutcomeService creates an outcome service drawing from rng
func NewOutcomeService(rng RandomSource) OutcomeService {
	if rng == nil {
		rng = DefaultRandom()
	}
	return &outcomeService{rng: rng}
}

func (s *outcomeService) Decide(cfg models.WinPolicyConfig, spinIndex int, betAmount int64) models.OutcomeDecision {
	if cfg.AutoMode {
		return s.decideByProbability(cfg).Normalize()
	}
	return decideBySchedule(cfg, spinIndex, betAmount).Normalize()
}

func (s *outcomeService) decideByProbability(cfg models.WinPolicyConfig) models.OutcomeDecision {
	percent := min(max(cfg.WinProbabilityPercent, 0), 100)
	if s.rng.Intn(100) >= percent {
		return models.LossDecision()
	}

	low := max(cfg.MinWinAmount, 0)
	high := max(cfg.MaxWinAmount, 0)
	amount := low
	// Inverted or equal bounds collapse to the minimum
	if span := high - low; span > 0 {
		if span >= math.MaxInt {
			amount = low + int64(s.rng.Intn(math.MaxInt))
		} else {
			amount = low + int64(s.rng.Intn(int(span+1)))
		}
	}
	return models.OutcomeDecision{IsWin: true, WinAmount: amount}
}

func decideBySchedule(cfg models.WinPolicyConfig, spinIndex int, betAmount int64) models.OutcomeDecision {
	amount, scheduled := cfg.Schedule[spinIndex]
	if !scheduled {
		return models.LossDecision()
	}
	if amount <= 0 {
		amount = math.MaxInt64
		if betAmount <= math.MaxInt64/ScheduledFallbackMultiplier {
			amount = betAmount * ScheduledFallbackMultiplier
		}
	}
	return models.OutcomeDecision{IsWin: true, WinAmount: amount}
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int { return rand.IntN(n) }

// DefaultRandom returns the process-wide generator, safe for concurrent use
func DefaultRandom() RandomSource { return globalRandom{} }

type seededRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRandom returns a reproducible generator for simulations and tests
func NewSeededRandom(seed uint64) RandomSource {
	return &seededRandom{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRandom) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
