package validator

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// New creates a validator from configuration.
func New(config Config) (Validator, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "gpt":
		return NewOpenAI(config)
	case "anthropic", "claude":
		return NewAnthropic(config)
	case "ollama":
		return NewOllama(config)
	case "static":
		return NewStatic("STATIC", 0.5, "static judgment"), nil
	case "human":
		return NewHuman("HUMAN", os.Stdin, os.Stderr), nil
	default:
		return nil, fmt.Errorf("unknown validator provider: %s (supported: openai, anthropic, ollama, static, human)", config.Provider)
	}
}

// ollamaModels are probed in order when no explicit configuration exists.
var ollamaModels = []string{"llama3", "mistral", "phi3"}

// DefaultSet assembles validators from what is actually reachable: cloud
// backends with API keys in the environment, plus a running Ollama. With
// localOnly set, only Ollama models are considered (one per model, for
// judgment diversity).
func DefaultSet(ctx context.Context, base Config, localOnly bool) []Validator {
	var out []Validator

	for _, model := range ollamaModels {
		cfg := base
		cfg.Provider = "ollama"
		cfg.Model = model
		v, err := NewOllama(cfg)
		if err != nil {
			continue
		}
		if v.Available(ctx) {
			out = append(out, v)
			if !localOnly {
				// One local model is enough when cloud backends join.
				break
			}
		}
		if localOnly && len(out) >= 3 {
			break
		}
	}

	if localOnly {
		return out
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg := base
		cfg.Provider = "anthropic"
		cfg.APIKey = key
		if v, err := NewAnthropic(cfg); err == nil {
			out = append(out, v)
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg := base
		cfg.Provider = "openai"
		cfg.APIKey = key
		if v, err := NewOpenAI(cfg); err == nil {
			out = append(out, v)
		}
	}
	return out
}
