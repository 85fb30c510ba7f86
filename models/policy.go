package models

import (
	"maps"
	"time"
)

// WinPolicyConfig is the process-wide outcome policy. Spins read it as an immutable snapshot.
type WinPolicyConfig struct {
	AutoMode              bool          `json:"autoMode"`
	WinProbabilityPercent int           `json:"winProbabilityPercent"`
	MinWinAmount          int64         `json:"minWinAmount"`
	MaxWinAmount          int64         `json:"maxWinAmount"`
	Schedule              map[int]int64 `json:"schedule"`
	HouseWinCap           int64         `json:"houseWinCap"`
	UpdatedAt             time.Time     `json:"updatedAt,omitzero"`
}

// DefaultWinPolicy returns the policy used before any settings are saved
func DefaultWinPolicy(schedule map[int]int64) WinPolicyConfig {
	return WinPolicyConfig{
		AutoMode:              false,
		WinProbabilityPercent: 0,
		MinWinAmount:          30000,
		MaxWinAmount:          50000,
		Schedule:              maps.Clone(schedule),
	}
}

// Clamp returns a copy with every field forced into its valid range:
// percent to 0..100, amounts and cap to >= 0, schedule keys to > 0.
func (c WinPolicyConfig) Clamp() WinPolicyConfig {
	out := c.Clone()
	out.WinProbabilityPercent = min(max(out.WinProbabilityPercent, 0), 100)
	out.MinWinAmount = max(out.MinWinAmount, 0)
	out.MaxWinAmount = max(out.MaxWinAmount, 0)
	out.HouseWinCap = max(out.HouseWinCap, 0)
	for spinIndex := range out.Schedule {
		if spinIndex <= 0 {
			delete(out.Schedule, spinIndex)
		}
	}
	return out
}

// Clone returns a deep copy so callers can't mutate a shared snapshot's schedule
func (c WinPolicyConfig) Clone() WinPolicyConfig {
	out := c
	out.Schedule = maps.Clone(c.Schedule)
	if out.Schedule == nil {
		out.Schedule = map[int]int64{}
	}
	return out
}
