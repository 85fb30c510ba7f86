package repository

import (
	"context"
	"errors"
	"fmt"

	"reelspin/database"
	"reelspin/models"

	"github.com/jackc/pgx/v5"
)

// PolicyRepository stores the singleton outcome policy and its scheduled win table
type PolicyRepository struct {
	db *database.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *database.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Get returns the saved policy, or nil if none has been saved yet
func (r *PolicyRepository) Get(ctx context.Context) (*models.WinPolicyConfig, error) {
	query := `
		SELECT auto_mode, win_probability_percent, min_win_amount, max_win_amount, house_win_cap, updated_at
		FROM policy_settings
		WHERE id = 1
	`

	var cfg models.WinPolicyConfig
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.AutoMode,
		&cfg.WinProbabilityPercent,
		&cfg.MinWinAmount,
		&cfg.MaxWinAmount,
		&cfg.HouseWinCap,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy settings: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT spin_index, win_amount FROM scheduled_wins ORDER BY spin_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled wins: %w", err)
	}
	defer rows.Close()

	cfg.Schedule = make(map[int]int64)
	for rows.Next() {
		var spinIndex int
		var amount int64
		if err := rows.Scan(&spinIndex, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled win: %w", err)
		}
		cfg.Schedule[spinIndex] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled wins: %w", err)
	}

	return &cfg, nil
}

// Save replaces the saved policy and schedule in one transaction
func (r *PolicyRepository) Save(ctx context.Context, cfg models.WinPolicyConfig) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO policy_settings
			(id, auto_mode, win_probability_percent, min_win_amount, max_win_amount, house_win_cap, updated_at)
			VALUES (1, $1, $2, $3, $4, $5, NOW())
			ON CONFLICT (id) DO UPDATE SET
				auto_mode = EXCLUDED.auto_mode,
				win_probability_percent = EXCLUDED.win_probability_percent,
				min_win_amount = EXCLUDED.min_win_amount,
				max_win_amount = EXCLUDED.max_win_amount,
				house_win_cap = EXCLUDED.house_win_cap,
				updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, upsert,
			cfg.AutoMode,
			cfg.WinProbabilityPercent,
			cfg.MinWinAmount,
			cfg.MaxWinAmount,
			cfg.HouseWinCap,
		); err != nil {
			return fmt.Errorf("failed to save policy settings: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM scheduled_wins`); err != nil {
			return fmt.Errorf("failed to clear scheduled wins: %w", err)
		}
		if len(cfg.Schedule) == 0 {
			return nil
		}

		insert := psql.Insert("scheduled_wins").Columns("spin_index", "win_amount")
		for spinIndex, amount := range cfg.Schedule {
			insert = insert.Values(spinIndex, amount)
		}
		sqlStr, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build scheduled wins insert: %w", err)
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("failed to save scheduled wins: %w", err)
		}
		return nil
	})
}
