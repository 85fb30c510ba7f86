package service

import (
	"context"
	"fmt"

	"reelspin/events"
	"reelspin/models"
)

type spinLogService struct {
	uowFactory UnitOfWorkFactory
	policy     PolicyService
}

// NewSpinLogService creates the spin telemetry service. The house win cap for Stats is read
// from the current policy.
func NewSpinLogService(uowFactory UnitOfWorkFactory, policy PolicyService) SpinLogService {
	return &spinLogService{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (s *spinLogService) LogSpinResult(ctx context.Context, accountID string, status models.SpinStatus, amount int64) error {
	if !status.Valid() {
		return fmt.Errorf("unknown spin status %q", status)
	}
	if amount < 0 {
		return fmt.Errorf("%w: logged amount %d", ErrInvalidAmount, amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry := &models.SpinLogEntry{
		AccountID: accountID,
		Status:    status,
		Amount:    amount,
	}
	if err := uow.SpinLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record spin log: %w", err)
	}

	if err := uow.EventBus().Publish(events.SpinLoggedEvent{
		AccountID: accountID,
		Status:    status,
		Amount:    amount,
	}); err != nil {
		return fmt.Errorf("failed to publish spin logged event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit spin log: %w", err)
	}
	return nil
}

func (s *spinLogService) Stats(ctx context.Context) (*models.SpinStats, error) {
	totals, err := s.totals(ctx)
	if err != nil {
		return nil, err
	}

	var houseWinCap int64
	if s.policy != nil {
		houseWinCap = s.policy.Snapshot().HouseWinCap
	}

	stats := models.NewSpinStats(*totals, houseWinCap)
	return &stats, nil
}

func (s *spinLogService) WinTotal(ctx context.Context) (int64, error) {
	totals, err := s.totals(ctx)
	if err != nil {
		return 0, err
	}
	return totals.WinTotal, nil
}

func (s *spinLogService) totals(ctx context.Context) (*models.SpinTotals, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.SpinLogRepository().GetTotals(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get spin totals: %w", err)
	}
	return totals, nil
}
