package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpinStatus is the result label recorded for each settled spin
type SpinStatus string

const (
	SpinStatusWin  SpinStatus = "WIN"
	SpinStatusLose SpinStatus = "LOSE"
)

// Valid reports whether s is a known status
func (s SpinStatus) Valid() bool {
	return s == SpinStatusWin || s == SpinStatusLose
}

// SpinLogEntry is one telemetry record. For WIN the amount is the payout, for LOSE the stake lost.
type SpinLogEntry struct {
	ID        int64      `db:"id"`
	AccountID string     `db:"account_id"`
	Status    SpinStatus `db:"status"`
	Amount    int64      `db:"amount"`
	CreatedAt time.Time  `db:"created_at"`
}

// SpinTotals aggregates the spin log
type SpinTotals struct {
	WinTotal  int64
	LoseTotal int64
	WinCount  int64
	LoseCount int64
}

// SpinStats is the reporting view over SpinTotals
type SpinStats struct {
	WinTotal  int64   `json:"winTotal"`
	LoseTotal int64   `json:"loseTotal"`
	WinCount  int64   `json:"winCount"`
	LoseCount int64   `json:"loseCount"`
	WinRate   float64 `json:"winRate"` // share of WIN amount in all logged amount, percent, 2 decimals
	// TargetReached is set once paid wins reach the house win cap
	TargetReached bool `json:"targetReached"`
}

// NewSpinStats derives the reporting view. A cap of zero never reports the target as reached.
func NewSpinStats(totals SpinTotals, houseWinCap int64) SpinStats {
	stats := SpinStats{
		WinTotal:      totals.WinTotal,
		LoseTotal:     totals.LoseTotal,
		WinCount:      totals.WinCount,
		LoseCount:     totals.LoseCount,
		TargetReached: houseWinCap > 0 && totals.WinTotal >= houseWinCap,
	}
	if total := totals.WinTotal + totals.LoseTotal; total > 0 {
		stats.WinRate = decimal.NewFromInt(totals.WinTotal).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(total), 2).
			InexactFloat64()
	}
	return stats
}
