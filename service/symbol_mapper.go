package service

import (
	"reelspin/models"
)

type symbolMapper struct {
	rng RandomSource
}

// NewSymbolMapper creates a mapper that never shows a triple without a payout
func NewSymbolMapper(rng RandomSource) SymbolMapper {
	if rng == nil {
		rng = DefaultRandom()
	}
	return &symbolMapper{rng: rng}
}

func (m *symbolMapper) Map(decision models.OutcomeDecision) models.ReelSymbols {
	if decision.Normalize().IsWin {
		symbol := models.WinningSymbols[m.rng.Intn(len(models.WinningSymbols))]
		return models.ReelSymbols{symbol, symbol, symbol}
	}

	var reels models.ReelSymbols
	for i := range reels {
		reels[i] = models.AllSymbols[m.rng.Intn(len(models.AllSymbols))]
	}

	// Accidental triple on a loss: re-roll the last reel from the other symbols
	if reels.IsTriple() {
		others := make([]models.Symbol, 0, len(models.AllSymbols)-1)
		for _, s := range models.AllSymbols {
			if s != reels[0] {
				others = append(others, s)
			}
		}
		reels[2] = others[m.rng.Intn(len(others))]
	}
	return reels
}
