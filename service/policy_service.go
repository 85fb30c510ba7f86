package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"reelspin/events"
	"reelspin/models"

	log "github.com/sirupsen/logrus"
)

type policyService struct {
	current   atomic.Pointer[models.WinPolicyConfig]
	repo      PolicyRepository
	publisher EventPublisher

	mu      sync.Mutex // serializes writers
	pending bool       // last save failed
}

// NewPolicyService creates a policy service seeded with initial. repo may be nil, in which
// case the policy lives only in memory.
func NewPolicyService(initial models.WinPolicyConfig, repo PolicyRepository, publisher EventPublisher) PolicyService {
	s := &policyService{repo: repo, publisher: publisher}
	seeded := initial.Clamp()
	s.current.Store(&seeded)
	return s
}

func (s *policyService) Snapshot() models.WinPolicyConfig {
	return s.current.Load().Clone()
}

func (s *policyService) Update(ctx context.Context, cfg models.WinPolicyConfig) models.WinPolicyConfig {
	applied := cfg.Clamp()
	applied.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.current.Store(&applied)
	s.pending = s.repo != nil
	s.mu.Unlock()

	if err := s.SyncPending(ctx); err != nil {
		log.WithError(err).Warn("Policy saved in memory only; will retry")
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(events.PolicyUpdatedEvent{Policy: applied.Clone()}); err != nil {
			log.WithError(err).Error("Failed to publish policy update")
		}
	}

	log.WithFields(log.Fields{
		"autoMode":       applied.AutoMode,
		"winProbability": applied.WinProbabilityPercent,
		"minWinAmount":   applied.MinWinAmount,
		"maxWinAmount":   applied.MaxWinAmount,
		"scheduledWins":  len(applied.Schedule),
		"houseWinCap":    applied.HouseWinCap,
	}).Info("Outcome policy updated")

	return applied.Clone()
}

func (s *policyService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	saved, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to load policy: %w", ErrPersistenceUnavailable, err)
	}
	if saved == nil {
		log.Info("No saved outcome policy, using defaults")
		return nil
	}

	loaded := saved.Clamp()
	s.mu.Lock()
	s.current.Store(&loaded)
	s.pending = false
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"autoMode":      loaded.AutoMode,
		"scheduledWins": len(loaded.Schedule),
	}).Info("Loaded saved outcome policy")
	return nil
}

func (s *policyService) SyncPending(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending || s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, *s.current.Load()); err != nil {
		return fmt.Errorf("%w: failed to save policy: %w", ErrPersistenceUnavailable, err)
	}
	s.pending = false
	return nil
}
