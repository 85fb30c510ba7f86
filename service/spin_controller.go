package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reelspin/events"
	"reelspin/models"

	log "github.com/sirupsen/logrus"
)

const defaultDecisionTimeout = 3 * time.Second

// SpinControllerConfig holds the controller's timing parameters
type SpinControllerConfig struct {
	DecisionTimeout time.Duration
	AutoSpinDelay   time.Duration
	TurboSpinDelay  time.Duration
}

// spinSession is one account's controller state. autoStop is the cancellation handle of
// the scheduled auto-spin loop; it is closed at most once, by whoever clears it.
type spinSession struct {
	mu       sync.Mutex
	state    models.SpinSessionState
	autoStop chan struct{}
}

type spinController struct {
	ledger    LedgerService
	decisions DecisionProvider
	mapper    SymbolMapper
	publisher EventPublisher
	cfg       SpinControllerConfig

	mu       sync.Mutex
	sessions map[string]*spinSession
	loops    sync.WaitGroup
}

// NewSpinController creates the spin session controller
func NewSpinController(ledger LedgerService, decisions DecisionProvider, mapper SymbolMapper, publisher EventPublisher, cfg SpinControllerConfig) SpinController {
	if cfg.DecisionTimeout <= 0 {
		cfg.DecisionTimeout = defaultDecisionTimeout
	}
	return &spinController{
		ledger:    ledger,
		decisions: decisions,
		mapper:    mapper,
		publisher: publisher,
		cfg:       cfg,
		sessions:  make(map[string]*spinSession),
	}
}

func (c *spinController) Spin(ctx context.Context, req models.SpinRequest) (*models.SpinResult, error) {
	return c.spin(ctx, req, false)
}

func (c *spinController) spin(ctx context.Context, req models.SpinRequest, auto bool) (*models.SpinResult, error) {
	sess := c.session(req.AccountID)

	if err := sess.acquire(req.SequenceNumber); err != nil {
		log.WithFields(log.Fields{
			"accountID": req.AccountID,
			"sequence":  req.SequenceNumber,
			"reason":    err,
		}).Debug("Spin request dropped")
		return nil, err
	}
	defer sess.release()

	if req.BetAmount <= 0 {
		return nil, fmt.Errorf("%w: bet must be positive, got %d", ErrInvalidBet, req.BetAmount)
	}

	balance, err := c.ledger.GetBalance(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if req.BetAmount > balance {
		return nil, fmt.Errorf("%w: %w: bet %d exceeds balance %d", ErrInvalidBet, ErrInsufficientFunds, req.BetAmount, balance)
	}

	// Once the debit is attempted the settlement runs to completion even if the caller goes away
	settleCtx := context.WithoutCancel(ctx)
	spinIndex := 0

	settlement, err := c.ledger.SettleWith(settleCtx, req.AccountID, req.BetAmount, func(ctx context.Context) (models.OutcomeDecision, error) {
		spinIndex = sess.beginSpinning(req.SequenceNumber)

		decisionCtx, cancel := context.WithTimeout(ctx, c.cfg.DecisionTimeout)
		defer cancel()

		decision, err := c.decisions.RequestDecision(decisionCtx, spinIndex, req.BetAmount)
		if err != nil {
			return models.LossDecision(), fmt.Errorf("%w: %w", ErrDecisionUnavailable, err)
		}
		return decision, nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) && !errors.Is(err, ErrInvalidBet) {
			err = fmt.Errorf("%w: %w", ErrInvalidBet, err)
		}
		return nil, err
	}

	sess.setPhase(models.SpinPhaseSettling)

	result := &models.SpinResult{
		AccountID:      req.AccountID,
		SpinIndex:      spinIndex,
		BetAmount:      req.BetAmount,
		IsWin:          settlement.Decision.IsWin,
		WinAmount:      settlement.Decision.WinAmount,
		NewBalance:     settlement.NewBalance,
		Symbols:        c.mapper.Map(settlement.Decision),
		DecisionFailed: settlement.DecisionFailed,
	}

	c.publish(events.SpinSettledEvent{Result: *result, AutoSpin: auto})

	log.WithFields(log.Fields{
		"accountID":  req.AccountID,
		"spinIndex":  spinIndex,
		"betAmount":  req.BetAmount,
		"isWin":      result.IsWin,
		"winAmount":  result.WinAmount,
		"newBalance": result.NewBalance,
		"autoSpin":   auto,
	}).Debug("Spin settled")

	return result, nil
}

func (c *spinController) StartAutoSpin(ctx context.Context, accountID string, betAmount int64, count int) error {
	if betAmount <= 0 {
		return fmt.Errorf("%w: bet must be positive, got %d", ErrInvalidBet, betAmount)
	}
	if count < 0 {
		return fmt.Errorf("%w: auto spin count must not be negative, got %d", ErrInvalidBet, count)
	}

	balance, err := c.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	if betAmount > balance {
		return fmt.Errorf("%w: %w: bet %d exceeds balance %d", ErrInvalidBet, ErrInsufficientFunds, betAmount, balance)
	}

	sess := c.session(accountID)
	stop := make(chan struct{})

	sess.mu.Lock()
	if sess.autoStop != nil {
		close(sess.autoStop)
	}
	sess.autoStop = stop
	sess.state.AutoSpinEnabled = true
	sess.state.AutoSpinRemaining = count
	sess.state.AutoSpinBet = betAmount
	sess.mu.Unlock()

	c.publish(events.AutoSpinChangedEvent{AccountID: accountID, Enabled: true, Remaining: count})
	log.WithFields(log.Fields{
		"accountID": accountID,
		"betAmount": betAmount,
		"count":     count,
	}).Info("Auto spin started")

	c.loops.Add(1)
	go c.runAutoSpin(accountID, sess, stop)
	return nil
}

func (c *spinController) runAutoSpin(accountID string, sess *spinSession, stop chan struct{}) {
	defer c.loops.Done()

	for {
		// Checked right before every re-entry, not only when the next spin was scheduled
		select {
		case <-stop:
			return
		default:
		}

		sess.mu.Lock()
		if sess.autoStop != stop {
			sess.mu.Unlock()
			return
		}
		bet := sess.state.AutoSpinBet
		sess.mu.Unlock()

		_, err := c.spin(context.Background(), models.SpinRequest{AccountID: accountID, BetAmount: bet}, true)
		switch {
		case errors.Is(err, ErrSpinInProgress):
			// A manual spin is in flight; try again after the delay without counting
		case err != nil:
			log.WithFields(log.Fields{
				"accountID": accountID,
				"error":     err,
			}).Info("Auto spin stopped")
			c.disableAutoSpin(accountID, sess, stop, err.Error())
			return
		default:
			if done := sess.countAutoSpin(stop); done {
				c.disableAutoSpin(accountID, sess, stop, "completed")
				return
			}
		}

		select {
		case <-stop:
			return
		case <-time.After(c.autoSpinDelay(sess)):
		}
	}
}

func (c *spinController) disableAutoSpin(accountID string, sess *spinSession, stop chan struct{}, reason string) {
	sess.mu.Lock()
	if sess.autoStop != stop {
		sess.mu.Unlock()
		return
	}
	sess.autoStop = nil
	sess.state.AutoSpinEnabled = false
	sess.state.AutoSpinRemaining = 0
	sess.mu.Unlock()

	c.publish(events.AutoSpinChangedEvent{AccountID: accountID, Enabled: false, Reason: reason})
}

func (c *spinController) StopAutoSpin(accountID string) {
	sess := c.session(accountID)

	sess.mu.Lock()
	wasEnabled := sess.state.AutoSpinEnabled
	if sess.autoStop != nil {
		close(sess.autoStop)
		sess.autoStop = nil
	}
	sess.state.AutoSpinEnabled = false
	sess.state.AutoSpinRemaining = 0
	sess.mu.Unlock()

	if wasEnabled {
		c.publish(events.AutoSpinChangedEvent{AccountID: accountID, Enabled: false, Reason: "stopped"})
		log.WithField("accountID", accountID).Info("Auto spin stopped by request")
	}
}

func (c *spinController) SetTurbo(accountID string, enabled bool) {
	sess := c.session(accountID)
	sess.mu.Lock()
	sess.state.TurboEnabled = enabled
	sess.mu.Unlock()
}

func (c *spinController) Session(accountID string) models.SpinSessionState {
	sess := c.session(accountID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

func (c *spinController) Shutdown() {
	c.mu.Lock()
	sessions := make([]*spinSession, 0, len(c.sessions))
	for _, sess := range c.sessions {
		sessions = append(sessions, sess)
	}
	c.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.autoStop != nil {
			close(sess.autoStop)
			sess.autoStop = nil
		}
		sess.state.AutoSpinEnabled = false
		sess.state.AutoSpinRemaining = 0
		sess.mu.Unlock()
	}

	c.loops.Wait()
	log.Info("Spin controller stopped")
}

func (c *spinController) session(accountID string) *spinSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[accountID]
	if !ok {
		sess = &spinSession{state: models.SpinSessionState{
			AccountID: accountID,
			Phase:     models.SpinPhaseIdle,
		}}
		c.sessions[accountID] = sess
	}
	return sess
}

func (c *spinController) autoSpinDelay(sess *spinSession) time.Duration {
	sess.mu.Lock()
	turbo := sess.state.TurboEnabled
	sess.mu.Unlock()

	if turbo {
		return c.cfg.TurboSpinDelay
	}
	return c.cfg.AutoSpinDelay
}

func (c *spinController) publish(event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish controller event")
	}
}

// acquire is the re-entrancy guard. On success the session is Betting and isSpinning is set.
func (s *spinSession) acquire(sequence int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsSpinning {
		return ErrSpinInProgress
	}
	if sequence != 0 && sequence <= s.state.LastSequence {
		return fmt.Errorf("%w: sequence %d, last accepted %d", ErrStaleRequest, sequence, s.state.LastSequence)
	}

	s.state.IsSpinning = true
	s.state.Phase = models.SpinPhaseBetting
	return nil
}

func (s *spinSession) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsSpinning = false
	s.state.Phase = models.SpinPhaseIdle
}

// beginSpinning is called once the debit has been accepted; only then does the sequence count
func (s *spinSession) beginSpinning(sequence int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sequence != 0 {
		s.state.LastSequence = sequence
	}
	s.state.SpinIndex++
	s.state.Phase = models.SpinPhaseSpinning
	return s.state.SpinIndex
}

func (s *spinSession) setPhase(phase models.SpinPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Phase = phase
}

// countAutoSpin records a completed auto spin and reports whether a bounded run is finished
func (s *spinSession) countAutoSpin(stop chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoStop != stop || s.state.AutoSpinRemaining == 0 {
		return false
	}
	s.state.AutoSpinRemaining--
	return s.state.AutoSpinRemaining == 0
}
