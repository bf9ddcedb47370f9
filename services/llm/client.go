// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides chat-completion clients for the hosted model
// providers the evaluator can play against.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	// ErrMissingAPIKey is returned when no key is configured for a provider.
	ErrMissingAPIKey = errors.New("api key is missing")

	// ErrEmptyResponse is returned when the provider answers without text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrUnknownProvider is returned by NewClient for unrecognised names.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseSchema asks the provider to constrain its answer to a JSON
// schema. Providers without native support receive the schema as an
// instruction instead.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      jsonschema.Definition
}

// GenerationParams tunes a single completion request. Nil pointers leave
// the provider default in place.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`

	// ReasoningEffort is "low", "medium" or "high" for reasoning models.
	ReasoningEffort string `json:"reasoning_effort,omitempty"`

	// Schema, when set, requests structured JSON output.
	Schema *ResponseSchema `json:"-"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
	Model() string
}

// Config selects and configures a provider client.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// APIError is a non-success HTTP answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable reports whether err is worth retrying. Transport errors and
// throttling are retryable. Client errors such as a bad key are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrMissingAPIKey) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

// NewClient builds the client for cfg.Provider.
func NewClient(cfg Config) (LLMClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// resolveAPIKey falls back to a mounted secret file when the key was not
// configured directly.
func resolveAPIKey(key, secretName string) string {
	if key != "" {
		return key
	}
	secretPath := "/run/secrets/" + secretName
	content, err := os.ReadFile(secretPath)
	if err != nil {
		return ""
	}
	slog.Info("Read API key from secret file", "path", secretPath)
	return strings.TrimSpace(string(content))
}
