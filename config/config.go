// Package config loads the athlete profile and engine settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lucasjlepore/trainload"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Athlete AthleteConfig `yaml:"athlete"`

	// PeakDurationsSeconds are the target durations for peak-effort
	// search. Each must span at least one whole second.
	PeakDurationsSeconds []int `yaml:"peak_durations_seconds"`

	// ConvergenceThreshold bounds the daily simulator's rest-day tail;
	// zero means the engine default.
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
}

// AthleteConfig is a dated list of threshold measurements.
type AthleteConfig struct {
	Events []EventConfig `yaml:"events"`
}

// EventConfig is one dated measurement: kind is ftp|fthr|weight.
type EventConfig struct {
	Date  string  `yaml:"date"` // 2006-01-02
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = trainload.DefaultConvergenceThreshold
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configuration errors up front: unknown event kinds, bad
// dates, sub-second peak durations and a non-positive convergence threshold.
func (c *Config) Validate() error {
	for i, e := range c.Athlete.Events {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			return fmt.Errorf("athlete event %d: invalid date %q: %w", i, e.Date, err)
		}
		switch e.Kind {
		case "ftp", "fthr", "weight":
		default:
			return fmt.Errorf("athlete event %d: unknown kind %q (expected ftp|fthr|weight)", i, e.Kind)
		}
		if e.Value <= 0 {
			return fmt.Errorf("athlete event %d: value must be positive, got %v", i, e.Value)
		}
	}
	for i, s := range c.PeakDurationsSeconds {
		if s < 1 {
			return fmt.Errorf("peak duration %d: must be at least one second, got %d", i, s)
		}
	}
	if c.ConvergenceThreshold <= 0 {
		return fmt.Errorf("convergence threshold must be positive, got %v", c.ConvergenceThreshold)
	}
	return nil
}

// ProfileTimeline builds the immutable athlete timeline from the config.
func (c *Config) ProfileTimeline() *trainload.ProfileTimeline {
	events := make([]trainload.ProfileEvent, 0, len(c.Athlete.Events))
	for _, e := range c.Athlete.Events {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue // Validate already rejected these
		}
		switch e.Kind {
		case "ftp":
			events = append(events, trainload.FTPEvent(date, trainload.Power(e.Value)))
		case "fthr":
			events = append(events, trainload.FTHrEvent(date, trainload.HeartRate(e.Value)))
		case "weight":
			events = append(events, trainload.WeightEvent(date, trainload.Weight(e.Value)))
		}
	}
	return trainload.NewProfileTimeline(events)
}

// PeakDurations builds the validated duration set; files that omit the list
// get the conventional 5s/1m/5m/20m targets.
func (c *Config) PeakDurations() (trainload.PeakDurations, error) {
	if len(c.PeakDurationsSeconds) == 0 {
		return trainload.NewPeakDurations(
			5*time.Second,
			time.Minute,
			5*time.Minute,
			20*time.Minute,
		)
	}
	durations := make([]time.Duration, len(c.PeakDurationsSeconds))
	for i, s := range c.PeakDurationsSeconds {
		durations[i] = time.Duration(s) * time.Second
	}
	return trainload.NewPeakDurations(durations...)
}
