package models

// SpinPhase is where an account's spin session currently is
type SpinPhase string

const (
	SpinPhaseIdle     SpinPhase = "idle"
	SpinPhaseBetting  SpinPhase = "betting"
	SpinPhaseSpinning SpinPhase = "spinning"
	SpinPhaseSettling SpinPhase = "settling"
)

// SpinSessionState is the per-account spin controller state
type SpinSessionState struct {
	AccountID  string    `json:"accountId"`
	Phase      SpinPhase `json:"phase"`
	IsSpinning bool      `json:"isSpinning"`
	// SpinIndex counts spins whose bet was successfully debited
	SpinIndex    int   `json:"spinIndex"`
	LastSequence int64 `json:"lastSequence"`

	AutoSpinEnabled bool `json:"autoSpinEnabled"`
	// AutoSpinRemaining is the number of auto spins left; 0 while enabled means unlimited
	AutoSpinRemaining int   `json:"autoSpinRemaining"`
	AutoSpinBet       int64 `json:"autoSpinBet"`
	TurboEnabled      bool  `json:"turboEnabled"`
}
