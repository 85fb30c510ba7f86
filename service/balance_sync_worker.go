package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// BalanceSyncWorker periodically retries balance and policy writes that failed
type BalanceSyncWorker struct {
	ledger   LedgerService
	policy   PolicyService
	interval time.Duration
}

// NewBalanceSyncWorker creates a new sync worker
func NewBalanceSyncWorker(ledger LedgerService, policy PolicyService, interval time.Duration) *BalanceSyncWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BalanceSyncWorker{
		ledger:   ledger,
		policy:   policy,
		interval: interval,
	}
}

// Start runs the worker until ctx is cancelled or the returned stop function is called.
// A final sync is attempted on the way out.
func (w *BalanceSyncWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("interval", w.interval).Info("Balance sync worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Balance sync worker shutting down (context cancelled)...")
				w.finalSync()
				return
			case <-stopChan:
				log.Info("Balance sync worker shutting down (stop requested)...")
				w.finalSync()
				return
			case <-time.After(w.interval):
				w.SyncOnce(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// SyncOnce runs a single sync pass
func (w *BalanceSyncWorker) SyncOnce(ctx context.Context) {
	if err := w.ledger.SyncDirty(ctx); err != nil {
		log.WithError(err).Warn("Balance sync incomplete")
	}
	if w.policy != nil {
		if err := w.policy.SyncPending(ctx); err != nil {
			log.WithError(err).Warn("Policy sync incomplete")
		}
	}
}

func (w *BalanceSyncWorker) finalSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.SyncOnce(ctx)
}
