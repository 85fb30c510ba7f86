// Command simulate runs the outcome policy offline and reports how it pays out
package main

import (
	"flag"
	"fmt"
	"math"

	"reelspin/config"
	"reelspin/models"
	"reelspin/service"
)

type report struct {
	Spins     int
	Wins      int
	Staked    int64
	Paid      int64
	MinPayout int64
	MaxPayout int64
	Buckets   []int
}

func (r report) winRate() float64 {
	if r.Spins == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Spins)
}

// rtp is the share of staked amount paid back in wins
func (r report) rtp() float64 {
	if r.Staked == 0 {
		return 0
	}
	return float64(r.Paid) / float64(r.Staked)
}

func main() {
	spins := flag.Int("spins", 100000, "number of spins to simulate")
	bet := flag.Int64("bet", 1000, "bet placed on every spin")
	percent := flag.Int("percent", 25, "win probability percent (auto mode)")
	minWin := flag.Int64("min", 30000, "minimum win amount")
	maxWin := flag.Int64("max", 50000, "maximum win amount")
	auto := flag.Bool("auto", true, "simulate probability mode instead of the schedule")
	scheduleFile := flag.String("schedule", "", "YAML schedule file (schedule mode)")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	cfg := models.DefaultWinPolicy(config.DefaultSchedule())
	if *scheduleFile != "" {
		schedule, err := config.LoadSchedule(*scheduleFile)
		if err != nil {
			fmt.Println("failed to load schedule:", err)
			return
		}
		cfg.Schedule = schedule
	}
	cfg.AutoMode = *auto
	cfg.WinProbabilityPercent = *percent
	cfg.MinWinAmount = *minWin
	cfg.MaxWinAmount = *maxWin
	cfg = cfg.Clamp()

	r := simulate(service.NewOutcomeService(service.NewSeededRandom(*seed)), cfg, *spins, *bet)
	printReport(cfg, r)
}

func simulate(outcomes service.OutcomeService, cfg models.WinPolicyConfig, spins int, bet int64) report {
	r := report{Spins: spins, Buckets: make([]int, 10)}

	for i := 1; i <= spins; i++ {
		d := outcomes.Decide(cfg, i, bet)
		r.Staked += bet
		if !d.IsWin {
			continue
		}

		r.Wins++
		r.Paid += d.WinAmount
		if r.MinPayout == 0 || d.WinAmount < r.MinPayout {
			r.MinPayout = d.WinAmount
		}
		r.MaxPayout = max(r.MaxPayout, d.WinAmount)

		if span := cfg.MaxWinAmount - cfg.MinWinAmount; span > 0 && cfg.AutoMode {
			bucket := int(float64(d.WinAmount-cfg.MinWinAmount) / float64(span+1) * 10)
			r.Buckets[min(max(bucket, 0), 9)]++
		}
	}
	return r
}

func printReport(cfg models.WinPolicyConfig, r report) {
	mode := "schedule"
	if cfg.AutoMode {
		mode = fmt.Sprintf("probability %d%%", cfg.WinProbabilityPercent)
	}

	fmt.Printf("=== Outcome simulation (%s) ===\n\n", mode)
	fmt.Printf("  Spins:       %d\n", r.Spins)
	fmt.Printf("  Wins:        %d (%.4f%%)\n", r.Wins, r.winRate()*100)
	fmt.Printf("  Staked:      %d\n", r.Staked)
	fmt.Printf("  Paid:        %d\n", r.Paid)
	fmt.Printf("  Payouts:     %d..%d\n", r.MinPayout, r.MaxPayout)
	fmt.Printf("  RTP:         %.2f%%\n", r.rtp()*100)

	if !cfg.AutoMode || r.Wins == 0 {
		return
	}

	expected := float64(cfg.WinProbabilityPercent) / 100
	chiSquared := 0.0
	if expected > 0 && expected < 1 {
		wantWins := float64(r.Spins) * expected
		wantLosses := float64(r.Spins) * (1 - expected)
		chiSquared = math.Pow(float64(r.Wins)-wantWins, 2)/wantWins +
			math.Pow(float64(r.Spins-r.Wins)-wantLosses, 2)/wantLosses
	}
	fmt.Printf("  Deviation:   %+.4f%% | χ²: %.2f\n", (r.winRate()-expected)*100, chiSquared)

	fmt.Printf("\nWin amount distribution (each bucket should hold ~%d):\n", r.Wins/10)
	perBucket := float64(r.Wins) / 10
	for i, n := range r.Buckets {
		bar := ""
		for j := 0; j < int(float64(n)/perBucket*20); j++ {
			bar += "█"
		}
		fmt.Printf("  bucket %d: %6d %s\n", i, n, bar)
	}
}
