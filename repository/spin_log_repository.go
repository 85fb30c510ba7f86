package repository

import (
	"context"
	"fmt"

	"reelspin/database"
	"reelspin/models"

	sq "github.com/Masterminds/squirrel"
)

const (
	spinLogTable     = "spin_log"
	spinLogAccountID = "account_id"
	spinLogStatus    = "status"
	spinLogAmount    = "amount"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SpinLogRepository implements the SpinLogRepository interface
type SpinLogRepository struct {
	q Queryable
}

// NewSpinLogRepository creates a new spin log repository
func NewSpinLogRepository(db *database.DB) *SpinLogRepository {
	return &SpinLogRepository{q: db.Pool}
}

// newSpinLogRepositoryWithTx creates a new spin log repository bound to a transaction
func newSpinLogRepositoryWithTx(tx Queryable) *SpinLogRepository {
	return &SpinLogRepository{q: tx}
}

// Record appends an entry to the spin log
func (r *SpinLogRepository) Record(ctx context.Context, entry *models.SpinLogEntry) error {
	var accountID any
	if entry.AccountID != "" {
		accountID = entry.AccountID
	}

	sqlStr, args, err := psql.Insert(spinLogTable).
		Columns(spinLogAccountID, spinLogStatus, spinLogAmount).
		Values(accountID, entry.Status, entry.Amount).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build spin log insert: %w", err)
	}

	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to record spin log: %w", err)
	}
	return nil
}

// GetTotals aggregates WIN and LOSE amounts and counts. An empty accountID covers every account.
func (r *SpinLogRepository) GetTotals(ctx context.Context, accountID string) (*models.SpinTotals, error) {
	query := psql.Select(
		fmt.Sprintf("COALESCE(SUM(%s) FILTER (WHERE %s = 'WIN'), 0)", spinLogAmount, spinLogStatus),
		fmt.Sprintf("COALESCE(SUM(%s) FILTER (WHERE %s = 'LOSE'), 0)", spinLogAmount, spinLogStatus),
		fmt.Sprintf("COUNT(*) FILTER (WHERE %s = 'WIN')", spinLogStatus),
		fmt.Sprintf("COUNT(*) FILTER (WHERE %s = 'LOSE')", spinLogStatus),
	).From(spinLogTable)

	if accountID != "" {
		query = query.Where(sq.Eq{spinLogAccountID: accountID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build spin totals query: %w", err)
	}

	var totals models.SpinTotals
	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(
		&totals.WinTotal,
		&totals.LoseTotal,
		&totals.WinCount,
		&totals.LoseCount,
	); err != nil {
		return nil, fmt.Errorf("failed to get spin totals: %w", err)
	}

	return &totals, nil
}
