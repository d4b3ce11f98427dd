package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LoadFile decodes a YAML file into v. Fields missing from the file keep
// whatever value v already holds, so callers pass a struct pre-filled with
// defaults.
func LoadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields of v tagged with `env:"NAME"` from the
// environment. Unset variables leave the field untouched.
func ApplyEnv(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Load layers a YAML file (when path is non-empty) and then the environment
// on top of v.
func Load(path string, v any) error {
	if path != "" {
		if err := LoadFile(path, v); err != nil {
			return err
		}
	}
	return ApplyEnv(v)
}
