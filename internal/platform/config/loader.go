package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// LoadOption adjusts Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	defaultBackend string
}

// WithDefaultBackend sets the audit backend used when none is configured.
// Without it Load falls back to DefaultServerBackend.
func WithDefaultBackend(name string) LoadOption {
	return func(o *loadOptions) {
		o.defaultBackend = name
	}
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is determined by CONFIG_PATH env (fallback "./config.yaml").
// If the file does not exist and CONFIG_PATH was not set explicitly,
// configuration is loaded from ENV + defaults only.
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{defaultBackend: DefaultServerBackend}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = o.defaultBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
