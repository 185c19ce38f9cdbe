// Package config loads the task plan and monitor settings for taskwatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/taskwatch/internal/monitor"
	"github.com/fentz26/taskwatch/internal/worker"
	"gopkg.in/yaml.v3"
)

// Config holds taskwatch configuration.
type Config struct {
	// PollMode is how the monitor waits between ticks: yield or notify.
	PollMode string `yaml:"poll_mode"`
	// IntervalMS bounds a notify-mode wait.
	IntervalMS int `yaml:"interval_ms"`
	// Hardened stops counting tasks whose reactions fault.
	Hardened bool `yaml:"hardened"`
	// Tasks are started in order, one goroutine each.
	Tasks []TaskConfig `yaml:"tasks"`
}

// TaskConfig describes one simulated worker.
type TaskConfig struct {
	Label    string `yaml:"label"`
	StagesMS []int  `yaml:"stages_ms"`
}

// DefaultConfig returns the two-task demo plan.
func DefaultConfig() *Config {
	return &Config{
		PollMode:   string(monitor.PollYield),
		IntervalMS: 50,
		Tasks: []TaskConfig{
			{Label: "TaskOne", StagesMS: []int{2000, 2000}},
			{Label: "TaskTwo", StagesMS: []int{1000, 1000}},
		},
	}
}

// DefaultPath returns ~/.taskwatch/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".taskwatch", "config.yaml"), nil
}

// LoadConfig loads configuration from a YAML file over the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.taskwatch/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// SaveConfig writes cfg as YAML, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := monitor.ParsePollMode(c.PollMode); err != nil {
		return err
	}
	if c.IntervalMS < 0 {
		return fmt.Errorf("interval_ms must not be negative")
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("at least one task is required")
	}

	seen := make(map[string]bool, len(c.Tasks))
	for _, task := range c.Tasks {
		if seen[task.Label] {
			return fmt.Errorf("duplicate task label %q", task.Label)
		}
		seen[task.Label] = true
	}
	for _, task := range c.WorkerTasks() {
		if err := task.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Mode returns the parsed poll mode, defaulting to yield.
func (c *Config) Mode() monitor.PollMode {
	mode, err := monitor.ParsePollMode(c.PollMode)
	if err != nil {
		return monitor.PollYield
	}
	return mode
}

// Interval returns the notify-mode fallback interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// WorkerTasks builds one worker.Task per configured task.
func (c *Config) WorkerTasks() []*worker.Task {
	tasks := make([]*worker.Task, 0, len(c.Tasks))
	for _, tc := range c.Tasks {
		stages := make([]time.Duration, len(tc.StagesMS))
		for i, msec := range tc.StagesMS {
			stages[i] = time.Duration(msec) * time.Millisecond
		}
		tasks = append(tasks, &worker.Task{Label: tc.Label, Stages: stages})
	}
	return tasks
}
