package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/avstation/stationd/core/billing"
	"github.com/avstation/stationd/core/metrics"
	"github.com/avstation/stationd/core/station"
	infranotify "github.com/avstation/stationd/infra/notify"
)

type Config struct {
	Station station.Config `json:"station"`
	Billing billing.Config `json:"billing"`
	Metrics metrics.Config `json:"metrics"`
	Notify  NotifyConfig   `json:"notify"`
	API     APIConfig      `json:"api"`
	Ticker  TickerConfig   `json:"ticker"`
	Logging LoggingConfig  `json:"logging"`
}

// Load reads the configuration file at path, applies ST_ prefixed
// environment overrides and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("ST_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "st_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Station.SetDefaults()
	c.Billing.SetDefaults()
	c.Notify.SetDefaults()
	c.API.SetDefaults()
	c.Ticker.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Station.Validate(); err != nil {
		return fmt.Errorf("station: %w", err)
	}
	if err := c.Billing.Validate(); err != nil {
		return fmt.Errorf("billing: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Ticker.Validate(); err != nil {
		return fmt.Errorf("ticker: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// NotifyConfig selects which notification sinks are attached at startup.
type NotifyConfig struct {
	LogEnabled   bool                   `json:"log_enabled"`
	HistoryLimit int                    `json:"history_limit"`
	MQTTEnabled  bool                   `json:"mqtt_enabled"`
	MQTT         infranotify.MQTTConfig `json:"mqtt"`
}

func (c *NotifyConfig) SetDefaults() {
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 500
	}
	c.MQTT.SetDefaults()
}
