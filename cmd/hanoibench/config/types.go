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
	"time"
)

// Limits enforced on the run section.
const (
	MinDisks = 1
	MaxDisks = 10
)

type HanoibenchConfig struct {
	// Model: which provider and model plays, and how it is called
	Model ModelConfig `yaml:"model"`

	// Run: defaults for evaluation runs
	Run RunConfig `yaml:"run"`

	// Logging: level, optional log directory and format
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry: trace and metric exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ModelConfig struct {
	// Provider is "openai" or "anthropic"
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic"`

	// Model is the provider model id, e.g. "o4-mini" or "claude-sonnet-4-5"
	Model string `yaml:"model"`

	// BaseURL points the provider client at a compatible server
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// ReasoningEffort is passed to reasoning models
	ReasoningEffort string `yaml:"reasoning_effort,omitempty" validate:"omitempty,oneof=low medium high"`

	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries        int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0,lte=10000"`

	// Keys are only ever read from the environment or secret files
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
}

// APIKey returns the key for the configured provider.
func (m ModelConfig) APIKey() string {
	if m.Provider == "anthropic" {
		return m.AnthropicAPIKey
	}
	return m.OpenAIAPIKey
}

type RunConfig struct {
	DefaultDisks  int    `yaml:"default_disks" validate:"gte=1,lte=10"`
	HistoryWindow int    `yaml:"history_window" validate:"gte=1,lte=50"`
	Auto          bool   `yaml:"auto"`
	OutputDir     string `yaml:"output_dir" validate:"required"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`

	// MetricsFile, when set, receives the Prometheus text dump of each run
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// DefaultConfig returns a config that plays OpenAI's o4-mini with a
// doubled move budget, exporting to ./output.
func DefaultConfig() HanoibenchConfig {
	return HanoibenchConfig{
		Model: ModelConfig{
			Provider:          "openai",
			Model:             "o4-mini",
			ReasoningEffort:   "medium",
			Timeout:           2 * time.Minute,
			MaxRetries:        2,
			RequestsPerMinute: 60,
		},
		Run: RunConfig{
			DefaultDisks:  3,
			HistoryWindow: 3,
			Auto:          false,
			OutputDir:     "output",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
	}
}
