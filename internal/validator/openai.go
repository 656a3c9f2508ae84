package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIValidator judges claims through OpenAI's Chat Completions API.
type OpenAIValidator struct {
	client *openai.Client
	config Config
}

// NewOpenAI creates an OpenAI-backed validator.
func NewOpenAI(config Config) (*OpenAIValidator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIValidator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

func (v *OpenAIValidator) Name() string {
	return "GPT"
}

func (v *OpenAIValidator) Available(ctx context.Context) bool {
	_, err := v.client.ListModels(ctx)
	return err == nil
}

func (v *OpenAIValidator) Verify(ctx context.Context, content, domain string) (*Judgment, error) {
	model := v.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := v.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	timeout := time.Duration(v.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(content, domain),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	confidence, reasoning, err := parseJudgment(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	return &Judgment{
		Confidence: confidence,
		Rationale:  reasoning,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
