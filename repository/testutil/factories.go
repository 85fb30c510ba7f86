package testutil

import (
	"time"

	"reelspin/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(accountID string) *models.Account {
	now := time.Now()
	return &models.Account{
		AccountID: accountID,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(accountID string, balance int64) *models.Account {
	account := CreateTestAccount(accountID)
	account.Balance = balance
	return account
}

// CreateTestBalanceHistory creates a test balance history entry for a lost 10000 bet
func CreateTestBalanceHistory(accountID string, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   100000,
		BalanceAfter:    90000,
		ChangeAmount:    -10000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"spin_index": float64(1),
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestSpinLogEntry creates a spin log entry
func CreateTestSpinLogEntry(accountID string, status models.SpinStatus, amount int64) *models.SpinLogEntry {
	return &models.SpinLogEntry{
		AccountID: accountID,
		Status:    status,
		Amount:    amount,
	}
}

// CreateTestPolicy creates a probability-mode policy with a two-entry schedule
func CreateTestPolicy() models.WinPolicyConfig {
	return models.WinPolicyConfig{
		AutoMode:              true,
		WinProbabilityPercent: 25,
		MinWinAmount:          1000,
		MaxWinAmount:          5000,
		Schedule:              map[int]int64{2: 100000, 4: 50000},
		HouseWinCap:           5000000,
	}
}
