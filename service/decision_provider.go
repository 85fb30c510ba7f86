package service

import (
	"context"

	"reelspin/models"

	log "github.com/sirupsen/logrus"
)

// WinTotaler reports the total already paid out in wins
type WinTotaler interface {
	WinTotal(ctx context.Context) (int64, error)
}

type localDecisionProvider struct {
	policy  PolicyService
	outcome OutcomeService
	wins    WinTotaler
}

// NewLocalDecisionProvider serves decisions in-process from the current policy.
// wins may be nil, which disables the house win cap.
func NewLocalDecisionProvider(policy PolicyService, outcome OutcomeService, wins WinTotaler) DecisionProvider {
	return &localDecisionProvider{
		policy:  policy,
		outcome: outcome,
		wins:    wins,
	}
}

func (p *localDecisionProvider) RequestDecision(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error) {
	if err := ctx.Err(); err != nil {
		return models.LossDecision(), err
	}

	// One snapshot per spin so a concurrent policy update can't tear the decision
	cfg := p.policy.Snapshot()

	if cfg.AutoMode && cfg.HouseWinCap > 0 && p.wins != nil {
		total, err := p.wins.WinTotal(ctx)
		switch {
		case err != nil:
			log.WithError(err).Warn("Could not read win total, house win cap not applied")
		case total >= cfg.HouseWinCap:
			log.WithFields(log.Fields{
				"winTotal":    total,
				"houseWinCap": cfg.HouseWinCap,
			}).Debug("House win cap reached, spin loses")
			return models.LossDecision(), nil
		}
	}

	return p.outcome.Decide(cfg, spinIndex, betAmount), nil
}
