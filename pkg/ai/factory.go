package ai

import (
	"fmt"
	"time"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config
	OllamaBaseURL string // e.g. "http://localhost:11434"
	OllamaModel   string // e.g. "llama3", "mistral"

	// Timeout bounds each provider HTTP call; zero means no client timeout
	Timeout time.Duration
}

// NewInferenceService creates an InferenceService based on the config.
// This is the factory function - switch AI provider by changing cfg.Provider.
func NewInferenceService(cfg Config) (InferenceService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil

	default:
		// Auto: Gemini primary with Ollama fallback when both are
		// configured, otherwise whichever is available.
		if cfg.GeminiAPIKey != "" {
			gemini := NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
			return NewFallbackService(gemini, NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout)), nil
		}
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil
	}
}
