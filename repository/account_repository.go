package repository

import (
	"context"
	"errors"
	"fmt"

	"reelspin/database"
	"reelspin/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account, returning nil when it does not exist
func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	query := `
		SELECT account_id, balance, created_at, updated_at
		FROM accounts
		WHERE account_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return &account, nil
}

// Create creates a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, accountID string, initialBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (account_id, balance)
		VALUES ($1, $2)
		RETURNING account_id, balance, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, accountID, initialBalance).Scan(
		&account.AccountID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", accountID, err)
	}

	return &account, nil
}

// UpdateBalance overwrites an account's balance
func (r *AccountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1
		WHERE account_id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}

	return nil
}
