package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

type sentimentResponse struct {
	Messages []MessageSentiment `json:"messages"`
}

type actionResponse struct {
	ActionItems []ActionSuggestion `json:"action_items"`
}

// extractJSON pulls a JSON object out of a model response, tolerating
// markdown code fences and surrounding prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		return text
	}

	if m := codeFenceRe.FindStringSubmatch(text); len(m) == 2 {
		return m[1]
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			return text[start : end+1]
		}
	}

	return text
}

func parseSentiment(text string) ([]MessageSentiment, error) {
	var resp sentimentResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if resp.Messages == nil {
		return nil, fmt.Errorf("%w: missing messages field", ErrMalformedOutput)
	}

	for i := range resp.Messages {
		if resp.Messages[i].Score > 1 {
			resp.Messages[i].Score = 1
		}
		if resp.Messages[i].Score < -1 {
			resp.Messages[i].Score = -1
		}
	}
	return resp.Messages, nil
}

func parseActions(text string) ([]ActionSuggestion, error) {
	var resp actionResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	var items []ActionSuggestion
	for _, item := range resp.ActionItems {
		if item.Title == "" {
			continue
		}
		if len(item.Title) > 255 {
			item.Title = item.Title[:255]
		}
		items = append(items, item)
	}
	return items, nil
}
