package usecase

import (
	"context"
	"log"

	channeldomain "healthpulse-backend/internal/channel/domain"
	"healthpulse-backend/pkg/ai"
)

// SentimentResult is the batch sentiment output consumed by the health
// score agent.
type SentimentResult struct {
	PerMessage []ai.MessageSentiment `json:"per_message"`

	AverageScore  float64 `json:"average_score"` // -1.0 to 1.0
	Trend         string  `json:"trend"`         // improving, declining, stable
	Dominant      string  `json:"dominant"`      // positive, negative, neutral
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
	Analyzed      int     `json:"analyzed"`

	// InsufficientData is set for an empty message window; the agent
	// reports neutral rather than failing.
	InsufficientData bool `json:"insufficient_data"`
	// Degraded is set when one or more batches fell back to neutral after
	// inference failures.
	Degraded bool `json:"degraded"`
}

// SentimentAgent scores message sentiment in batches through the inference
// capability.
type SentimentAgent struct {
	inference ai.InferenceService
	batchSize int
}

// NewSentimentAgent creates a sentiment agent that splits input into
// batches of batchSize messages per inference call.
func NewSentimentAgent(inference ai.InferenceService, batchSize int) *SentimentAgent {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SentimentAgent{inference: inference, batchSize: batchSize}
}

// Analyze scores an ordered message sequence. An empty input yields a
// neutral insufficient-data result, not an error. A batch whose inference
// call fails after retries degrades to neutral placeholders and marks the
// result degraded; the run continues.
func (a *SentimentAgent) Analyze(ctx context.Context, messages []*channeldomain.Message) (*SentimentResult, error) {
	if len(messages) == 0 {
		return &SentimentResult{
			Trend:            "stable",
			Dominant:         "neutral",
			InsufficientData: true,
		}, nil
	}

	payload := make([]ai.ChatMessage, len(messages))
	for i, m := range messages {
		payload[i] = ai.ChatMessage{
			UserType: string(m.UserType),
			Content:  m.Content,
		}
	}

	result := &SentimentResult{Analyzed: len(messages)}

	for start := 0; start < len(payload); start += a.batchSize {
		end := start + a.batchSize
		if end > len(payload) {
			end = len(payload)
		}
		batch := payload[start:end]

		scored, err := a.inference.AnalyzeSentiment(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[Sentiment] batch %d-%d degraded to neutral: %v", start, end, err)
			result.Degraded = true
			for i := range batch {
				result.PerMessage = append(result.PerMessage, ai.MessageSentiment{
					Index: start + i,
					Score: 0,
					Label: "neutral",
				})
			}
			continue
		}

		for _, s := range scored {
			s.Index += start
			result.PerMessage = append(result.PerMessage, s)
		}
	}

	a.summarize(result)
	return result, nil
}

func (a *SentimentAgent) summarize(result *SentimentResult) {
	scores := make([]float64, 0, len(result.PerMessage))
	var sum float64
	for _, s := range result.PerMessage {
		scores = append(scores, s.Score)
		sum += s.Score

		switch {
		case s.Score > 0.2:
			result.PositiveCount++
		case s.Score < -0.2:
			result.NegativeCount++
		default:
			result.NeutralCount++
		}
	}

	if len(scores) == 0 {
		result.Trend = "stable"
		result.Dominant = "neutral"
		return
	}

	result.AverageScore = sum / float64(len(scores))

	switch {
	case result.AverageScore > 0.2:
		result.Dominant = "positive"
	case result.AverageScore < -0.2:
		result.Dominant = "negative"
	default:
		result.Dominant = "neutral"
	}

	// Trend compares the first half of the window against the second
	mid := len(scores) / 2
	result.Trend = "stable"
	if mid > 0 {
		var firstSum, secondSum float64
		for _, s := range scores[:mid] {
			firstSum += s
		}
		for _, s := range scores[mid:] {
			secondSum += s
		}
		firstAvg := firstSum / float64(mid)
		secondAvg := secondSum / float64(len(scores)-mid)

		switch {
		case secondAvg > firstAvg+0.1:
			result.Trend = "improving"
		case secondAvg < firstAvg-0.1:
			result.Trend = "declining"
		}
	}
}
