package notifier

// WinTier is the presentation label for a payout. It has no effect on settlement.
type WinTier string

const (
	TierNone  WinTier = ""
	TierWin   WinTier = "WIN"
	TierBig   WinTier = "BIG WIN"
	TierMega  WinTier = "MEGA WIN"
	TierSuper WinTier = "SUPER WIN"
)

const (
	megaWinThreshold  = 500000
	superWinThreshold = 1000000
)

// TierFor labels a payout. bigWinThreshold is the lower bound of TierBig.
func TierFor(winAmount, bigWinThreshold int64) WinTier {
	switch {
	case winAmount <= 0:
		return TierNone
	case winAmount >= superWinThreshold:
		return TierSuper
	case winAmount >= megaWinThreshold:
		return TierMega
	case winAmount >= bigWinThreshold:
		return TierBig
	default:
		return TierWin
	}
}

// Color is the embed color for the tier
func (t WinTier) Color() int {
	switch t {
	case TierSuper:
		return 0x9B59B6
	case TierMega:
		return 0xE67E22
	case TierBig:
		return 0xF1C40F
	default:
		return 0x2ECC71
	}
}
