package ai

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
)

// FallbackService routes between a primary and a secondary provider.
// The secondary is tried when the primary hits its quota or is unreachable.
type FallbackService struct {
	primary   InferenceService
	secondary InferenceService
}

// NewFallbackService creates a fallback service over two providers
func NewFallbackService(primary, secondary InferenceService) *FallbackService {
	return &FallbackService{primary: primary, secondary: secondary}
}

func (f *FallbackService) AnalyzeSentiment(ctx context.Context, messages []ChatMessage) ([]MessageSentiment, error) {
	result, err := f.primary.AnalyzeSentiment(ctx, messages)
	if err == nil || f.secondary == nil || !shouldFallback(err) {
		return result, err
	}

	log.Printf("[AI] primary provider failed (%v), falling back for sentiment", err)
	return f.secondary.AnalyzeSentiment(ctx, messages)
}

func (f *FallbackService) SuggestActions(ctx context.Context, req ActionRequest) ([]ActionSuggestion, error) {
	result, err := f.primary.SuggestActions(ctx, req)
	if err == nil || f.secondary == nil || !shouldFallback(err) {
		return result, err
	}

	log.Printf("[AI] primary provider failed (%v), falling back for actions", err)
	return f.secondary.SuggestActions(ctx, req)
}

// shouldFallback reports whether the secondary provider is worth trying.
// Malformed output is a prompt problem, not a provider problem, so it is
// not routed to the fallback.
func shouldFallback(err error) bool {
	if errors.Is(err, ErrQuota) {
		return true
	}
	return isConnectionError(err)
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
