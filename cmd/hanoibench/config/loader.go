// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the hanoibench YAML config, overlays environment
// variables and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigError reports a config file that could not be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// envOverlay holds the variables that override file settings. Empty values
// leave the file value alone.
type envOverlay struct {
	Provider        string `env:"HANOIBENCH_PROVIDER"`
	OutputDir       string `env:"HANOIBENCH_OUTPUT_DIR"`
	LogLevel        string `env:"HANOIBENCH_LOG_LEVEL"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultPath returns ~/.hanoibench/hanoibench.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".hanoibench", "hanoibench.yaml"), nil
}

// Load reads the config at path, or DefaultPath when path is empty. A
// missing file at the default location is created with DefaultConfig; a
// missing explicit path is an error.
//
// # Outputs
//
//   - the validated config, with environment overrides applied
//   - the path that was used
//   - *ConfigError for unreadable, unparsable or invalid config
func Load(path string) (*HanoibenchConfig, string, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return nil, path, &ConfigError{Path: path, Err: err}
		}
		if err := createDefault(path); err != nil {
			return nil, path, &ConfigError{Path: path, Err: err}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: fmt.Errorf("failed to read the config file: %w", err)}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	return cfg, path, nil
}

// Parse decodes YAML over DefaultConfig, applies the environment and
// validates.
func Parse(data []byte) (*HanoibenchConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *HanoibenchConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Marshal renders cfg as YAML. Keys are never included.
func Marshal(cfg *HanoibenchConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func applyEnv(cfg *HanoibenchConfig) error {
	var ov envOverlay
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.Provider != "" {
		cfg.Model.Provider = strings.ToLower(ov.Provider)
	}
	if ov.OutputDir != "" {
		cfg.Run.OutputDir = ov.OutputDir
	}
	if ov.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(ov.LogLevel)
	}
	cfg.Model.OpenAIAPIKey = ov.OpenAIAPIKey
	cfg.Model.AnthropicAPIKey = ov.AnthropicAPIKey

	switch cfg.Model.Provider {
	case "openai":
		if ov.OpenAIModel != "" {
			cfg.Model.Model = ov.OpenAIModel
		}
		if ov.OpenAIBaseURL != "" {
			cfg.Model.BaseURL = ov.OpenAIBaseURL
		}
	case "anthropic":
		if ov.AnthropicModel != "" {
			cfg.Model.Model = ov.AnthropicModel
		}
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
