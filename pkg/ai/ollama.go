package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaService implements InferenceService using a local Ollama instance
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaService creates an Ollama-backed inference service. A zero
// timeout leaves request deadlines to the caller's context.
func NewOllamaService(baseURL, model string, timeout time.Duration) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *OllamaService) AnalyzeSentiment(ctx context.Context, messages []ChatMessage) ([]MessageSentiment, error) {
	text, err := o.generate(ctx, sentimentPrompt(messages), 0.1)
	if err != nil {
		return nil, err
	}
	return parseSentiment(text)
}

func (o *OllamaService) SuggestActions(ctx context.Context, req ActionRequest) ([]ActionSuggestion, error) {
	text, err := o.generate(ctx, actionPrompt(req), 0.4)
	if err != nil {
		return nil, err
	}
	return parseActions(text)
}

func (o *OllamaService) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if result.Response == "" {
		return "", fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	return result.Response, nil
}
