package config

import "fmt"

// APIConfig defines the HTTP API listener settings.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// RateLimit is the sustained requests per second allowed per client.
	RateLimit float64 `json:"rate_limit"`
	// RateBurst is the burst size of the limiter.
	RateBurst int `json:"rate_burst"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 40
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// TickerConfig drives the background charging simulation.
type TickerConfig struct {
	Enabled bool `json:"enabled"`
	// IntervalSeconds is the wall-clock period between ticks.
	IntervalSeconds int `json:"interval_seconds"`
	// StepHours is the simulated charging duration applied per tick.
	StepHours float64 `json:"step_hours"`
}

// SetDefaults applies sane defaults.
func (c *TickerConfig) SetDefaults() {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 5
	}
	if c.StepHours <= 0 {
		c.StepHours = 0.25
	}
}

// Validate checks mandatory fields.
func (c TickerConfig) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if c.StepHours <= 0 {
		return fmt.Errorf("step_hours must be positive")
	}
	return nil
}

// LoggingConfig defines the global log verbosity.
type LoggingConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}
