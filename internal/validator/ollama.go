package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaValidator judges claims through a local Ollama instance. It needs
// no API key, which makes it the default offline backend.
type OllamaValidator struct {
	baseURL    string
	model      string
	httpClient *http.Client
	config     Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// NewOllama creates an Ollama-backed validator for the given model.
func NewOllama(config Config) (*OllamaValidator, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g. llama3, mistral)")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		// Local models are slower than cloud APIs.
		timeout = 120 * time.Second
	}
	return &OllamaValidator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      config.Model,
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
	}, nil
}

func (v *OllamaValidator) Name() string {
	return "OLLAMA:" + strings.ToUpper(v.model)
}

func (v *OllamaValidator) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (v *OllamaValidator) Verify(ctx context.Context, content, domain string) (*Judgment, error) {
	maxTokens := v.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}
	apiReq := ollamaRequest{
		Model:  v.model,
		Prompt: buildPrompt(content, domain),
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: 0.3,
			NumPredict:  maxTokens,
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	confidence, reasoning, err := parseJudgment(resp.Response)
	if err != nil {
		return nil, err
	}
	return &Judgment{
		Confidence: confidence,
		Rationale:  reasoning,
		Model:      v.model,
		TokensUsed: resp.PromptEvalCount + resp.EvalCount,
	}, nil
}
