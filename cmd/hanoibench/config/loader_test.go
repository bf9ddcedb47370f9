// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every overlay variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HANOIBENCH_PROVIDER", "HANOIBENCH_OUTPUT_DIR", "HANOIBENCH_LOG_LEVEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 3, cfg.Run.DefaultDisks)
	assert.Equal(t, 3, cfg.Run.HistoryWindow)
}

func TestLoad_CreatesDefault(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hanoibench", "hanoibench.yaml"), path)
	assert.Equal(t, DefaultConfig().Run, cfg.Run)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: openai")
	assert.NotContains(t, string(data), "api_key")
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Overrides(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(`
model:
  provider: anthropic
  model: claude-test
  timeout: 30s
  max_retries: 4
run:
  default_disks: 5
  auto: true
`))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-test", cfg.Model.Model)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 4, cfg.Model.MaxRetries)
	assert.Equal(t, 5, cfg.Run.DefaultDisks)
	assert.True(t, cfg.Run.Auto)
	// Untouched sections keep their defaults.
	assert.Equal(t, "output", cfg.Run.OutputDir)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
}

func TestParse_EnvOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("ANTHROPIC_MODEL", "ignored-for-openai")
	t.Setenv("HANOIBENCH_OUTPUT_DIR", "/tmp/out")
	t.Setenv("HANOIBENCH_LOG_LEVEL", "DEBUG")

	cfg, err := Parse([]byte(`model: {provider: openai}`))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Model.APIKey())
	assert.Equal(t, "gpt-test", cfg.Model.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Model.BaseURL)
	assert.Equal(t, "/tmp/out", cfg.Run.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParse_EnvProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("HANOIBENCH_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-x")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-x", cfg.Model.Model)
	assert.Equal(t, "ak-test", cfg.Model.APIKey())
}

func TestParse_Invalid(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"provider":  "model: {provider: gemini}",
		"disks":     "run: {default_disks: 11}",
		"zero disk": "run: {default_disks: 0}",
		"effort":    "model: {reasoning_effort: extreme}",
		"retries":   "model: {max_retries: -1}",
		"exporter":  "telemetry: {trace_exporter: zipkin}",
		"base url":  "model: {base_url: 'not a url'}",
		"yaml":      "model: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_InvalidMessageNamesField(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("run: {default_disks: 42}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DefaultDisks")
}

func TestMarshal_OmitsKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.OpenAIAPIKey = "sk-secret"
	data, err := Marshal(&cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Contains(t, string(data), "history_window: 3")
}
