package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options tune the two motion rules. Thresholds for the other sensors
// are fixed; see evaluator.go.
type Options struct {
	// Rooms where any detected motion raises an alert.
	WatchRooms []string `yaml:"watch_rooms"`

	// Outside business hours means hour >= AfterHoursStart or
	// hour <= AfterHoursEnd (the range wraps past midnight).
	AfterHoursStart int `yaml:"after_hours_start"`
	AfterHoursEnd   int `yaml:"after_hours_end"`
}

func DefaultOptions() Options {
	return Options{
		WatchRooms:      []string{"Ruang Arsip"},
		AfterHoursStart: 17,
		AfterHoursEnd:   6,
	}
}

// LoadOptions reads an override file. An empty path means defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return opts, nil
}
