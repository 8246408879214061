// Package attention watches a presence signal during an interview and
// escalates sustained absence to warnings and, eventually, termination.
//
// Machine is the pure state machine. Monitor runs it against a Camera and
// a Detector on a single goroutine and publishes Signals.
package attention

import "time"

// Config holds the monitor's timing and escalation settings.
type Config struct {
	// LookAwayThreshold is how long absence must last before a warning.
	LookAwayThreshold time.Duration `mapstructure:"look_away_threshold"`

	// SampleInterval is the time between presence classifications.
	SampleInterval time.Duration `mapstructure:"sample_interval"`

	// MaxWarnings ends the interview when reached.
	MaxWarnings int `mapstructure:"max_warnings"`

	// ScoreThreshold is the minimum detection score that counts as a face.
	ScoreThreshold float64 `mapstructure:"score_threshold"`

	// WarningDisplay is how long a warning notice stays on screen.
	WarningDisplay time.Duration `mapstructure:"warning_display"`
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		LookAwayThreshold: 2000 * time.Millisecond,
		SampleInterval:    300 * time.Millisecond,
		MaxWarnings:       3,
		ScoreThreshold:    0.3,
		WarningDisplay:    3000 * time.Millisecond,
	}
}

// withDefaults replaces unset or invalid fields with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LookAwayThreshold <= 0 {
		c.LookAwayThreshold = d.LookAwayThreshold
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = d.SampleInterval
	}
	if c.MaxWarnings <= 0 {
		c.MaxWarnings = d.MaxWarnings
	}
	if c.ScoreThreshold <= 0 {
		c.ScoreThreshold = d.ScoreThreshold
	}
	if c.WarningDisplay <= 0 {
		c.WarningDisplay = d.WarningDisplay
	}
	return c
}
