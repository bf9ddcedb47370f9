// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIVersion   = "2023-06-01"
	defaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultMaxTokens      = 4096
	maxErrorBodyLogged    = 512
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	System    []systemBlock      `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
	Thinking  *thinkingParams    `json:"thinking,omitempty"`

	Temperature *float32 `json:"temperature,omitempty"`
	StopSeqs    []string `json:"stop_sequences,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type systemBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type thinkingParams struct {
	Type         string `json:"type"` // Must be "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicContent struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// thinkingBudgets maps a reasoning effort onto an extended-thinking budget.
var thinkingBudgets = map[string]int{
	"low":    1024,
	"medium": 4096,
	"high":   16384,
}

// AnthropicClient talks to the Anthropic Messages API over plain HTTP.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	url        string
}

// NewAnthropicClient creates a client from cfg. The key may come from cfg
// or from the anthropic_api_key secret file.
func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	apiKey := resolveAPIKey(cfg.APIKey, "anthropic_api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY)", ErrMissingAPIKey)
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
		slog.Info("Anthropic model not set, using default", "model", model)
	}
	url := defaultAnthropicURL
	if cfg.BaseURL != "" {
		url = strings.TrimSuffix(cfg.BaseURL, "/") + "/v1/messages"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &AnthropicClient{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		url:        url,
	}, nil
}

// Model returns the configured model name.
func (a *AnthropicClient) Model() string { return a.model }

// Chat implements the LLMClient interface
func (a *AnthropicClient) Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error) {
	reqPayload := a.buildRequest(messages, params)

	reqBodyBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("content-type", "application/json")

	slog.Debug("Sending REST request to Anthropic", "model", a.model)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp anthropicResponse
	parseErr := json.Unmarshal(bodyBytes, &apiResp)

	if resp.StatusCode != http.StatusOK {
		msg := string(bodyBytes)
		if parseErr == nil && apiResp.Error != nil {
			msg = apiResp.Error.Type + ": " + apiResp.Error.Message
		}
		if len(msg) > maxErrorBodyLogged {
			msg = msg[:maxErrorBodyLogged]
		}
		return "", &APIError{Provider: ProviderAnthropic, StatusCode: resp.StatusCode, Message: msg}
	}
	if parseErr != nil {
		return "", fmt.Errorf("failed to parse response JSON: %w", parseErr)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "thinking":
			slog.Debug("Model thinking", "chars", len(block.Thinking))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}

func (a *AnthropicClient) buildRequest(messages []Message, params GenerationParams) anthropicRequest {
	var apiMessages []anthropicMessage
	var systemParts []string

	for _, msg := range messages {
		if strings.EqualFold(msg.Role, RoleSystem) {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		apiMessages = append(apiMessages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}

	// No native structured output, so the schema travels as an instruction.
	if params.Schema != nil {
		if raw, err := json.Marshal(&params.Schema.Schema); err == nil {
			systemParts = append(systemParts,
				"Respond with a single JSON object only, no prose or code fences, matching this JSON schema:\n"+string(raw))
		}
	}

	reqPayload := anthropicRequest{
		Model:     a.model,
		Messages:  apiMessages,
		MaxTokens: defaultMaxTokens,
		StopSeqs:  params.Stop,
	}
	if len(systemParts) > 0 {
		reqPayload.System = []systemBlock{{Type: "text", Text: strings.Join(systemParts, "\n\n")}}
	}
	if params.MaxTokens != nil {
		reqPayload.MaxTokens = *params.MaxTokens
	}

	if budget, ok := thinkingBudgets[strings.ToLower(params.ReasoningEffort)]; ok {
		reqPayload.Thinking = &thinkingParams{Type: "enabled", BudgetTokens: budget}
		if minRequired := budget + 2048; reqPayload.MaxTokens < minRequired {
			reqPayload.MaxTokens = minRequired
		}
		// Extended thinking rejects a custom temperature.
		return reqPayload
	}
	reqPayload.Temperature = params.Temperature
	return reqPayload
}
