package app

import "fmt"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath        string
	HealthcheckPort int
	LogFormat       string
	LogLevel        string
	WorkerCount     int
}

// NewConfig validates a Config and returns it. Worker count is the hard
// precondition: the distributor refuses a pool smaller than one.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, fmt.Errorf("plan path must not be empty")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
