package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSchedule is the scheduled win table used when no schedule file is configured.
// Spin 2 and spin 4 of every account pay 100000.
func DefaultSchedule() map[int]int64 {
	return map[int]int64{2: 100000, 4: 100000}
}

// scheduleFile is the on-disk layout of a schedule file:
//
//	wins:
//	  2: 100000
//	  4: 100000
type scheduleFile struct {
	Wins map[int]int64 `yaml:"wins"`
}

// LoadSchedule reads a scheduled win table from a YAML file.
// Non-positive spin indices are rejected; non-positive amounts are kept and
// later resolved to the bet fallback.
func LoadSchedule(path string) (map[int]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes a YAML schedule document
func ParseSchedule(data []byte) (map[int]int64, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}

	schedule := make(map[int]int64, len(file.Wins))
	for spinIndex, amount := range file.Wins {
		if spinIndex <= 0 {
			return nil, fmt.Errorf("invalid spin index %d: must be positive", spinIndex)
		}
		schedule[spinIndex] = amount
	}
	return schedule, nil
}
