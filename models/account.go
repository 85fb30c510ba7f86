package models

import (
	"time"
)

// Account is a player account with a single-currency balance
type Account struct {
	AccountID string    `db:"account_id" json:"accountId"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
