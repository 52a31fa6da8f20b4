package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/relview/internal/digest"
	"github.com/ziadkadry99/relview/internal/logging"
	"github.com/ziadkadry99/relview/internal/walker"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: RELVIEW_BATCH__OUTPUT_DIR sets batch.output_dir.
const EnvPrefix = "RELVIEW_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (RELVIEW_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values. Language
// and style names are checked when the highlighter is built.
func (c *Config) Validate() error {
	if _, err := digest.Parse(c.Digest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.TabWidth < 0 {
		return fmt.Errorf("%w: tab_width must be non-negative", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := walker.NewFilter(c.Batch.Include, c.Batch.Exclude, ""); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Batch.RelationsSuffix == "" {
		return fmt.Errorf("%w: batch.relations_suffix is required", ErrInvalid)
	}
	if c.Batch.OutputDir == "" {
		return fmt.Errorf("%w: batch.output_dir is required", ErrInvalid)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalid, c.Serve.Port)
	}
	return nil
}
