package service

import (
	"context"
	"fmt"

	"reelspin/events"
	"reelspin/models"
)

// RecordBalanceChange records a balance history entry and queues the matching event.
// The event only reaches subscribers once the unit of work commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		AccountID:       history.AccountID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	}
	if err := uow.EventBus().Publish(event); err != nil {
		return fmt.Errorf("failed to publish balance change: %w", err)
	}
	return nil
}
