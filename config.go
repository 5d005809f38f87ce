package appmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-appmap/pkg/activity"
)

// Config holds the settings an embedding host passes through the environment.
type Config struct {
	StorageDir   string          `env:"STORAGE_DIR"`
	FileName     string          `env:"FILE_NAME" envDefault:"customModulesMapping.pickle"`
	LogLevel     string          `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string          `env:"LOG_FORMAT" envDefault:"text"`
	FilterEngine string          `env:"FILTER_ENGINE" envDefault:"expr"`
	Activity     activity.Config `envPrefix:"ACTIVITY_"`
}

// EnvPrefix namespaces every variable read by LoadConfig.
const EnvPrefix = "APPMAP_"

// LoadConfig reads Config from APPMAP_* environment variables and validates it.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("appmap: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values LoadConfig cannot express as tags.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StorageDir) == "" {
		return errors.New("appmap: STORAGE_DIR is required")
	}
	if strings.ContainsAny(c.FileName, `/\`) || strings.TrimSpace(c.FileName) == "" {
		return fmt.Errorf("appmap: invalid FILE_NAME %q", c.FileName)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("appmap: invalid LOG_LEVEL %q: must be debug, info, warn or error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("appmap: invalid LOG_FORMAT %q: must be text or json", c.LogFormat)
	}
	switch c.FilterEngine {
	case "expr", "cel", "js":
	default:
		return fmt.Errorf("appmap: unknown FILTER_ENGINE %q", c.FilterEngine)
	}
	return nil
}
