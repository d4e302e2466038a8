// Package runner replays branch traces through a tournament predictor.
package runner

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/sarchlab/tourney/timing/tournament"
)

// Config holds the options of a trace replay.
type Config struct {
	// Predictor configures the predictor under test.
	Predictor tournament.Config `json:"predictor"`

	// LogPath is the diagnostic table log to append to. Empty disables it.
	LogPath string `json:"log_path"`

	// LogMispredictions logs every mispredicted branch through logrus.
	LogMispredictions bool `json:"log_mispredictions"`

	// ProgressInterval logs progress every N branches. Zero disables it.
	ProgressInterval uint64 `json:"progress_interval"`

	// MaxBranches stops the replay after N branches. Zero means no limit.
	MaxBranches uint64 `json:"max_branches"`
}

// DefaultConfig returns the default replay configuration.
func DefaultConfig() *Config {
	return &Config{
		Predictor:        tournament.DefaultConfig(),
		ProgressInterval: 1000000,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read runner config file")
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse runner config")
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize runner config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write runner config file")
	}

	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Predictor.Validate(); err != nil {
		return errors.Wrap(err, "predictor")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
