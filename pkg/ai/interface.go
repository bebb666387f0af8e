package ai

import (
	"context"
	"errors"
)

// ErrQuota marks provider quota exhaustion (429). Callers degrade
// immediately instead of retrying.
var ErrQuota = errors.New("ai quota exceeded")

// ErrMalformedOutput marks responses that failed schema validation.
// Callers re-prompt once, then degrade.
var ErrMalformedOutput = errors.New("ai malformed output")

// ChatMessage is one chat message handed to sentiment analysis
type ChatMessage struct {
	UserType string `json:"user_type"`
	Content  string `json:"content"`
}

// MessageSentiment is the per-message sentiment result
type MessageSentiment struct {
	Index int     `json:"index"`
	Score float64 `json:"score"` // -1.0 (negative) to 1.0 (positive)
	Label string  `json:"label"` // positive, negative, neutral
}

// RiskFactorInput names a weighted churn contributor for action generation
type RiskFactorInput struct {
	Label     string  `json:"label"`
	Component string  `json:"component"` // sentiment, engagement, cadence
	Weight    float64 `json:"weight"`
}

// ActionRequest is the input for action item generation
type ActionRequest struct {
	CustomerName string            `json:"customer_name"`
	HealthScore  int               `json:"health_score"`
	RiskFactors  []RiskFactorInput `json:"risk_factors"`
}

// ActionSuggestion is one recommended follow-up produced by the provider
type ActionSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"` // engagement, support, relationship, technical, billing
}

// InferenceService is the interface for the AI inference capability.
// Implement this interface to add new providers (Gemini, Ollama, OpenAI, etc.)
type InferenceService interface {
	AnalyzeSentiment(ctx context.Context, messages []ChatMessage) ([]MessageSentiment, error)
	SuggestActions(ctx context.Context, req ActionRequest) ([]ActionSuggestion, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
