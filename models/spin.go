package models

// SpinRequest is a single bet placed by an account
type SpinRequest struct {
	AccountID string `json:"accountId"`
	BetAmount int64  `json:"betAmount"`
	// SequenceNumber increases per account. Zero means the caller did not supply one.
	SequenceNumber int64 `json:"sequenceNumber,omitempty"`
}

// OutcomeDecision is the win/lose verdict for a spin, decided before any symbols are chosen
type OutcomeDecision struct {
	IsWin     bool  `json:"isWin"`
	WinAmount int64 `json:"winAmount"`
}

// LossDecision is the canonical losing outcome
func LossDecision() OutcomeDecision {
	return OutcomeDecision{}
}

// Normalize turns any non-positive win into a loss so a win always pays
func (d OutcomeDecision) Normalize() OutcomeDecision {
	if !d.IsWin || d.WinAmount <= 0 {
		return LossDecision()
	}
	return d
}

// Symbol is a reel glyph
type Symbol string

const (
	SymbolCherry  Symbol = "🍒"
	SymbolLemon   Symbol = "🍋"
	SymbolOrange  Symbol = "🍊"
	SymbolBell    Symbol = "🔔"
	SymbolStar    Symbol = "⭐"
	SymbolDiamond Symbol = "💎"
)

// AllSymbols is the full reel strip
var AllSymbols = []Symbol{SymbolCherry, SymbolLemon, SymbolOrange, SymbolBell, SymbolStar, SymbolDiamond}

// WinningSymbols are the symbols a winning triple may be made of
var WinningSymbols = []Symbol{SymbolDiamond, SymbolStar, SymbolBell}

// ReelSymbols is what the three reels stop on
type ReelSymbols [3]Symbol

// IsTriple reports whether all three reels show the same symbol
func (r ReelSymbols) IsTriple() bool {
	return r[0] == r[1] && r[1] == r[2]
}

// SpinResult is the settled outcome of one spin
type SpinResult struct {
	AccountID  string      `json:"accountId"`
	SpinIndex  int         `json:"spinIndex"`
	BetAmount  int64       `json:"betAmount"`
	IsWin      bool        `json:"isWin"`
	WinAmount  int64       `json:"winAmount"`
	NewBalance int64       `json:"newBalance"`
	Symbols    ReelSymbols `json:"symbols"`
	// DecisionFailed is set when the outcome could not be obtained and the bet was forfeited
	DecisionFailed bool `json:"decisionFailed,omitempty"`
}
