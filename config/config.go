// Package config loads and validates the application configuration from YAML
// or JSON files, with environment overrides.
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

	"github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/infra/notify"
)

type Config struct {
	Logging     LoggingConfig                `json:"logging"`
	Storage     StorageConfig                `json:"storage"`
	Locking     LockingConfig                `json:"locking"`
	Metrics     metrics.Config               `json:"metrics"`
	Notify      notify.Config                `json:"notify"`
	Catalog     CatalogConfig                `json:"catalog"`
	Constraints []model.SchedulingConstraint `json:"constraints"`
	// Prerequisites maps a subject code to the codes that must be taught
	// earlier in the week for the same groups.
	Prerequisites map[string][]string `json:"prerequisites"`
}

// Load reads the file at path, applies TT_-prefixed environment overrides
// (TT_STORAGE__DSN maps to storage.dsn) and validates the result.
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
	if err := k.Load(env.Provider("TT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Storage.SetDefaults()
	cfg.Locking.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	for _, c := range cfg.Constraints {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoggingConfig defines structured log settings.
type LoggingConfig struct {
	// Level is the minimum level emitted: debug, info, warn or error.
	Level string `json:"level"`
	// Component tags every log line.
	Component string `json:"component"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Component == "" {
		c.Component = "timetable"
	}
}

// Validate checks the level is known.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend string `json:"backend"`
	// DSN is the PostgreSQL connection string.
	DSN string `json:"dsn"`
	// Migrate applies pending schema migrations on startup.
	Migrate bool `json:"migrate"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Validate checks mandatory fields.
func (c StorageConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("postgres backend requires a dsn")
		}
		return nil
	}
	return fmt.Errorf("unknown storage backend %s", c.Backend)
}

// LockingConfig bounds lock acquisition waits.
type LockingConfig struct {
	WaitMS int `json:"wait_ms"`
}

// SetDefaults applies sane defaults.
func (c *LockingConfig) SetDefaults() {
	if c.WaitMS <= 0 {
		c.WaitMS = 2000
	}
}
