// Package config provides configuration helpers and TOML/YAML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file.
type FileConfig struct {
	Solve   SolveConfig   `toml:"solve" yaml:"solve"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Bench   BenchConfig   `toml:"bench" yaml:"bench"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// SolveConfig maps solve-related settings.
type SolveConfig struct {
	Alphabet     *string `toml:"alphabet" yaml:"alphabet"`
	Template     *string `toml:"template" yaml:"template"`
	Conjunction  *string `toml:"conjunction" yaml:"conjunction"`
	PluralSuffix *string `toml:"plural" yaml:"plural"`
	Forced       *string `toml:"forced" yaml:"forced"`
	Separator    *string `toml:"separator" yaml:"separator"`
	Seed         *uint64 `toml:"seed" yaml:"seed"`
	MaxIter      *int    `toml:"max-iter" yaml:"max-iter"`
	Timeout      *string `toml:"timeout" yaml:"timeout"`
	ReportEvery  *int    `toml:"report-every" yaml:"report-every"`
	Workers      *int    `toml:"workers" yaml:"workers"`
}

// HistoryConfig maps history listing settings.
type HistoryConfig struct {
	Last *int `toml:"last" yaml:"last"`
}

// BenchConfig maps benchmark settings.
type BenchConfig struct {
	Seeds     *int    `toml:"seeds" yaml:"seeds"`
	Templates *string `toml:"templates" yaml:"templates"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level" yaml:"level"`
}

// LoadConfig reads a config from the given path. Files ending in .yaml or .yml are decoded as
// YAML, everything else as TOML. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg FileConfig
	if IsYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if _, err := toml.Decode(string(data), &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// IsYAML reports whether path names a YAML file.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Validate checks values that decoding alone cannot.
func (c FileConfig) Validate() error {
	if _, err := c.Solve.TimeoutDuration(); err != nil {
		return err
	}
	if c.Solve.MaxIter != nil && *c.Solve.MaxIter < 0 {
		return fmt.Errorf("solve.max-iter must be >= 0")
	}
	if c.Solve.ReportEvery != nil && *c.Solve.ReportEvery < 0 {
		return fmt.Errorf("solve.report-every must be >= 0")
	}
	if c.Solve.Workers != nil && *c.Solve.Workers < 0 {
		return fmt.Errorf("solve.workers must be >= 0")
	}
	if c.Solve.Template != nil && strings.Count(*c.Solve.Template, "{0}") != 1 {
		return fmt.Errorf("solve.template must contain {0} exactly once")
	}
	if c.Bench.Seeds != nil && *c.Bench.Seeds <= 0 {
		return fmt.Errorf("bench.seeds must be > 0")
	}
	if c.History.Last != nil && *c.History.Last < 0 {
		return fmt.Errorf("history.last must be >= 0")
	}
	return nil
}

// TimeoutDuration parses solve.timeout. A nil result means the value is unset.
func (s SolveConfig) TimeoutDuration() (*time.Duration, error) {
	if s.Timeout == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*s.Timeout))
	if err != nil {
		return nil, fmt.Errorf("solve.timeout: %w", err)
	}
	if d < 0 {
		return nil, fmt.Errorf("solve.timeout must be >= 0")
	}
	return &d, nil
}
