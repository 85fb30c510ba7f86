package service

import "errors"

var (
	// ErrInvalidBet is returned for a bet that is not positive or exceeds the balance
	ErrInvalidBet = errors.New("invalid bet")

	// ErrInvalidAmount is returned for a non-positive debit or a negative credit or balance
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDecisionUnavailable marks a spin whose outcome could not be obtained
	ErrDecisionUnavailable = errors.New("decision unavailable")

	// ErrPersistenceUnavailable is returned when the store is needed and cannot be reached
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrSpinInProgress is returned when a spin request arrives while another is in flight.
	// The request is dropped without any state change.
	ErrSpinInProgress = errors.New("spin already in progress")

	// ErrStaleRequest is returned for a sequence number at or below the last accepted one
	ErrStaleRequest = errors.New("stale or duplicate spin request")
)
