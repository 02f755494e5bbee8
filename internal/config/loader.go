package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// DefaultPath is the config location relative to the working directory
const DefaultPath = ".devflow/config.yaml"

// Load reads the config at path. A missing file yields Default(). Values
// in the file override the defaults key by key.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to read config file: %s", path), err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, errors.NewConfigParseError(path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg and validates the result
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// Save writes cfg as YAML, creating the parent directory
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
