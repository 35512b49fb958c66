// Package config loads run configuration for the demo drivers from YAML
// or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig describes one demo run: how many workers to start with, the
// batch of sleeping tasks to submit, and the resize applied mid-run.
type RunConfig struct {
	PoolName     string  `yaml:"pool_name" json:"pool_name"`
	Workers      int     `yaml:"workers" json:"workers"`
	Tasks        int     `yaml:"tasks" json:"tasks"`
	TaskDuration string  `yaml:"task_duration" json:"task_duration"`
	ResizeTo     int     `yaml:"resize_to" json:"resize_to"`
	RatePerSec   float64 `yaml:"rate_per_sec" json:"rate_per_sec"`
	RateBurst    int     `yaml:"rate_burst" json:"rate_burst"`
	Verbose      bool    `yaml:"verbose" json:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *RunConfig {
	return &RunConfig{
		PoolName:     "demo",
		Workers:      runtime.GOMAXPROCS(0),
		Tasks:        16,
		TaskDuration: "250ms",
		ResizeTo:     4,
	}
}

// Load reads a RunConfig from path, accepting .yaml/.yml or .json, and
// fills unset fields with defaults.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the duration syntax.
func (c *RunConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Tasks < 0 {
		return fmt.Errorf("tasks must be >= 0, got %d", c.Tasks)
	}
	if c.ResizeTo < 0 {
		return fmt.Errorf("resize_to must be >= 0, got %d", c.ResizeTo)
	}
	if _, err := c.SleepDuration(); err != nil {
		return fmt.Errorf("invalid task_duration: %w", err)
	}
	return nil
}

// SleepDuration parses the per-task sleep time.
func (c *RunConfig) SleepDuration() (time.Duration, error) {
	if c.TaskDuration == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TaskDuration)
}
