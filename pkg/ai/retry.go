package ai

import (
	"context"
	"errors"
	"log"
	"time"
)

// RetryService wraps an InferenceService with bounded retries.
//
// Retry policy per the failure taxonomy:
//   - quota exceeded: no retry, the caller degrades immediately
//   - malformed output: one re-prompt, then the error surfaces
//   - timeout / transient: up to maxRetries attempts with doubling backoff
type RetryService struct {
	inner      InferenceService
	maxRetries int
	backoff    time.Duration
}

// NewRetryService wraps a provider with the standard retry policy
func NewRetryService(inner InferenceService, maxRetries int, backoff time.Duration) *RetryService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &RetryService{inner: inner, maxRetries: maxRetries, backoff: backoff}
}

func (r *RetryService) AnalyzeSentiment(ctx context.Context, messages []ChatMessage) ([]MessageSentiment, error) {
	var result []MessageSentiment
	err := r.do(ctx, "sentiment", func() error {
		var callErr error
		result, callErr = r.inner.AnalyzeSentiment(ctx, messages)
		return callErr
	})
	return result, err
}

func (r *RetryService) SuggestActions(ctx context.Context, req ActionRequest) ([]ActionSuggestion, error) {
	var result []ActionSuggestion
	err := r.do(ctx, "actions", func() error {
		var callErr error
		result, callErr = r.inner.SuggestActions(ctx, req)
		return callErr
	})
	return result, err
}

func (r *RetryService) do(ctx context.Context, op string, call func() error) error {
	var lastErr error
	rePrompted := false
	delay := r.backoff

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, ErrQuota) {
			return lastErr
		}

		if errors.Is(lastErr, ErrMalformedOutput) {
			if rePrompted {
				return lastErr
			}
			rePrompted = true
			attempt-- // the re-prompt does not consume a retry attempt
			log.Printf("[AI] %s returned malformed output, re-prompting once", op)
			continue
		}

		if attempt < r.maxRetries {
			log.Printf("[AI] %s failed (attempt %d/%d): %v, retrying in %s", op, attempt+1, r.maxRetries, lastErr, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return lastErr
}
