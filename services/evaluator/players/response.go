// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package players

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/hanoi"
	"github.com/AleutianAI/hanoibench/services/llm"
)

// ErrMalformedResponse is returned when model output cannot be read as a
// move. It is retryable: the next sample may well be valid.
var ErrMalformedResponse = errors.New("malformed model response")

// moveResponse is the structured reply requested from the model.
type moveResponse struct {
	Reasoning string `json:"reasoning" validate:"required"`
	Move      struct {
		SourceTower      string `json:"source_tower" validate:"required,max=16"`
		DestinationTower string `json:"destination_tower" validate:"required,max=16"`
	} `json:"move" validate:"required"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// MoveSchema is the JSON schema sent with every model request.
func MoveSchema() *llm.ResponseSchema {
	tower := jsonschema.Definition{
		Type: jsonschema.String,
		Enum: []string{"A", "B", "C"},
	}
	return &llm.ResponseSchema{
		Name:        "hanoi_move",
		Description: "The next Towers of Hanoi move and the reasoning behind it",
		Schema: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"reasoning": {
					Type:        jsonschema.String,
					Description: "Why this move makes progress toward the goal",
				},
				"move": {
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"source_tower":      tower,
						"destination_tower": tower,
					},
					Required:             []string{"source_tower", "destination_tower"},
					AdditionalProperties: false,
				},
			},
			Required:             []string{"reasoning", "move"},
			AdditionalProperties: false,
		},
	}
}

// ParseProposal reads a move from model output.
//
// The first JSON object in text is used, so code fences and surrounding
// prose are tolerated. Tower names go through hanoi.ParseTowerID.
func ParseProposal(text string) (evaluator.Proposal, error) {
	raw, ok := firstJSONObject(text)
	if !ok {
		return evaluator.Proposal{}, fmt.Errorf("%w: no JSON object in %q", ErrMalformedResponse, truncate(text, 120))
	}

	var resp moveResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := getValidator().Struct(resp); err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	from, err := hanoi.ParseTowerID(resp.Move.SourceTower)
	if err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: source: %v", ErrMalformedResponse, err)
	}
	to, err := hanoi.ParseTowerID(resp.Move.DestinationTower)
	if err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: destination: %v", ErrMalformedResponse, err)
	}
	return evaluator.Proposal{
		Move:      hanoi.Move{From: from, To: to},
		Reasoning: strings.TrimSpace(resp.Reasoning),
	}, nil
}

// firstJSONObject returns the first balanced {...} span in s, skipping
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
