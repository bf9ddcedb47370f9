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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveSchema() *ResponseSchema {
	return &ResponseSchema{
		Name: "move",
		Schema: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"reasoning": {Type: jsonschema.String},
			},
			Required: []string{"reasoning"},
		},
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "bard", APIKey: "k"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(Config{Provider: ProviderAnthropic})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, IsRetryable(err))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(errors.New("connection reset")))
	assert.True(t, IsRetryable(&APIError{StatusCode: 429}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 401}))
}

func TestOpenAIClient_Chat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"reasoning\":\"ok\"}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "test-key", Model: "gpt-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", client.Model())

	out, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "rules"},
		{Role: RoleUser, Content: "state"},
	}, GenerationParams{ReasoningEffort: "low", Schema: moveSchema()})
	require.NoError(t, err)
	assert.Equal(t, `{"reasoning":"ok"}`, out)

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, "low", got["reasoning_effort"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Len(t, got["messages"], 2)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerationParams{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestAnthropicClient_Chat(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = io.WriteString(w, `{"id":"m1","type":"message","role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"{\"reasoning\":\"go\"}"}]}`)
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	temp := float32(0.2)
	out, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "rules"},
		{Role: RoleUser, Content: "state"},
	}, GenerationParams{Temperature: &temp, Schema: moveSchema()})
	require.NoError(t, err)
	assert.Equal(t, `{"reasoning":"go"}`, out)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, RoleUser, got.Messages[0].Role)
	require.Len(t, got.System, 1)
	assert.Contains(t, got.System[0].Text, "rules")
	assert.Contains(t, got.System[0].Text, "JSON schema")
	require.NotNil(t, got.Temperature)
	assert.Nil(t, got.Thinking)
}

func TestAnthropicClient_ThinkingDropsTemperature(t *testing.T) {
	client := &AnthropicClient{model: "m"}
	temp := float32(0.5)
	req := client.buildRequest([]Message{{Role: RoleUser, Content: "x"}},
		GenerationParams{Temperature: &temp, ReasoningEffort: "high"})

	require.NotNil(t, req.Thinking)
	assert.Equal(t, 16384, req.Thinking.BudgetTokens)
	assert.GreaterOrEqual(t, req.MaxTokens, 16384+2048)
	assert.Nil(t, req.Temperature)
}

func TestAnthropicClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, GenerationParams{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad model")
	assert.False(t, IsRetryable(err))
}

func TestAnthropicClient_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"m1","type":"message","content":[]}`)
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, GenerationParams{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
