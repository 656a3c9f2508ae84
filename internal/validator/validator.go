// Package validator defines the capability contract for external judgment
// sources and the concrete backends that wrap third-party inference
// services. The core treats every backend uniformly: a function from claim
// to (confidence, rationale) that may fail or time out.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Judgment is a single validator's verdict on a claim.
type Judgment struct {
	// Confidence in [0,1]. Parsed output is clamped before it gets here.
	Confidence float64

	// Rationale is the validator's brief explanation.
	Rationale string

	// Model is the backing model identifier, when one exists.
	Model string

	// TokensUsed tracks inference cost, when the backend reports it.
	TokensUsed int
}

// Validator wraps one judgment source.
type Validator interface {
	// Name labels this validator's results and perspective refs.
	Name() string

	// Verify judges the claim content within the given domain.
	Verify(ctx context.Context, content, domain string) (*Judgment, error)

	// Available reports whether the backend is reachable and configured.
	Available(ctx context.Context) bool
}

// Config holds backend settings shared by all providers.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "static", "human".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the provider-specific model name.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for cloud providers.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (e.g. a local Ollama).
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout per request, in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

const promptTemplate = `You are a truth validator. Analyze the following claim and determine its accuracy.

Claim: %s
Domain: %s

Respond in JSON format:
{
    "confidence": <float between 0 and 1>,
    "reasoning": "<brief explanation>"
}

Be objective. If uncertain, reflect that in a lower confidence score.`

// buildPrompt renders the shared judgment prompt.
func buildPrompt(content, domain string) string {
	if domain == "" {
		domain = "general"
	}
	return fmt.Sprintf(promptTemplate, content, domain)
}

type judgmentPayload struct {
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// parseJudgment extracts the {"confidence": ..., "reasoning": ...} contract
// from model output. Models wrap JSON in prose often enough that a fallback
// scan for the first object literal is worth having. A missing or
// non-finite confidence is an error, never a silent 0.0.
func parseJudgment(raw string) (float64, string, error) {
	raw = strings.TrimSpace(raw)
	var payload judgmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return 0, "", fmt.Errorf("no JSON object in validator output")
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
			return 0, "", fmt.Errorf("parse validator output: %w", err)
		}
	}
	if payload.Confidence == nil {
		return 0, "", fmt.Errorf("validator output missing confidence")
	}
	c := *payload.Confidence
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, "", fmt.Errorf("validator reported non-finite confidence")
	}
	c = math.Min(1.0, math.Max(0.0, c))
	reasoning := strings.TrimSpace(payload.Reasoning)
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	return c, reasoning, nil
}
