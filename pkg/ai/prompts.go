package ai

import (
	"fmt"
	"strings"
)

func sentimentPrompt(messages []ChatMessage) string {
	var b strings.Builder
	for i, m := range messages {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i, m.UserType, truncate(m.Content, 500))
	}

	return fmt.Sprintf(`You are a customer success analyst. Score the sentiment of each
chat message below from the customer relationship perspective.

Respond with JSON only, no prose, in this exact shape:
{"messages":[{"index":0,"score":-0.5,"label":"negative"}]}

Rules:
- "score" is a number from -1.0 (very negative) to 1.0 (very positive)
- "label" is one of: positive, negative, neutral
- Include every message exactly once, using its listed index

MESSAGES:
%s`, b.String())
}

func actionPrompt(req ActionRequest) string {
	var b strings.Builder
	for _, f := range req.RiskFactors {
		fmt.Fprintf(&b, "- %s (component: %s, weight: %.2f)\n", f.Label, f.Component, f.Weight)
	}

	return fmt.Sprintf(`You are a customer success manager. Customer %q has health score %d/10
with these churn risk factors (highest weight first):
%s
Suggest 1-3 concrete follow-up actions that address the listed factors.

Respond with JSON only, no prose, in this exact shape:
{"action_items":[{"title":"...","description":"...","category":"engagement"}]}

Rules:
- "category" is one of: engagement, support, relationship, technical, billing
- Keep titles under 80 characters and descriptions to one or two sentences`,
		req.CustomerName, req.HealthScore, b.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
