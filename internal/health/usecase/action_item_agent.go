package usecase

import (
	"context"
	"log"

	"healthpulse-backend/internal/health/domain"
	"healthpulse-backend/pkg/ai"
)

// ActionItemAgent maps risk factors to prioritized follow-up actions. The
// inference capability drafts the suggestions; when it degrades, a fixed
// per-component mapping takes over so a risky customer never goes without
// recommendations.
type ActionItemAgent struct {
	inference ai.InferenceService
}

// NewActionItemAgent creates an action item agent
func NewActionItemAgent(inference ai.InferenceService) *ActionItemAgent {
	return &ActionItemAgent{inference: inference}
}

// Recommend produces new action items for the given ranked risk factors.
// No risk factors means no items and no inference call. The returned bool
// reports whether the agent degraded to the fallback mapping.
func (a *ActionItemAgent) Recommend(ctx context.Context, customerName string, score int, factors domain.RiskFactorList) ([]*domain.ActionItem, bool) {
	if len(factors) == 0 {
		return nil, false
	}

	req := ai.ActionRequest{
		CustomerName: customerName,
		HealthScore:  score,
		RiskFactors:  make([]ai.RiskFactorInput, len(factors)),
	}
	for i, f := range factors {
		req.RiskFactors[i] = ai.RiskFactorInput{
			Label:     f.Label,
			Component: string(f.Component),
			Weight:    f.Weight,
		}
	}

	suggestions, err := a.inference.SuggestActions(ctx, req)
	if err != nil || len(suggestions) == 0 {
		if err != nil {
			log.Printf("[Actions] inference failed, using fallback mapping: %v", err)
		}
		return a.fallbackItems(factors), err != nil
	}

	items := make([]*domain.ActionItem, 0, len(suggestions))
	for i, s := range suggestions {
		// Priority follows risk factor weight, highest first; overflow
		// suggestions inherit the last factor's weight so priorities
		// never climb back up the list
		weight := factors[len(factors)-1].Weight
		if i < len(factors) {
			weight = factors[i].Weight
		}
		items = append(items, &domain.ActionItem{
			Title:       s.Title,
			Description: s.Description,
			Category:    validCategory(s.Category),
			Priority:    priorityForWeight(weight),
			Status:      domain.ActionStatusOpen,
		})
	}
	return items, false
}

// fallbackItems is the deterministic factor-to-action mapping used when the
// inference capability is unavailable.
func (a *ActionItemAgent) fallbackItems(factors domain.RiskFactorList) []*domain.ActionItem {
	var items []*domain.ActionItem

	for _, f := range factors {
		item := &domain.ActionItem{
			Priority: priorityForWeight(f.Weight),
			Status:   domain.ActionStatusOpen,
		}

		switch f.Component {
		case domain.ComponentSentiment:
			item.Title = "Address customer concerns"
			item.Description = "Review recent communications and follow up on unresolved complaints."
			item.Category = "support"
		case domain.ComponentEngagement:
			item.Title = "Increase customer engagement"
			item.Description = "Share relevant product updates, tips, or success stories to restart the conversation."
			item.Category = "engagement"
		case domain.ComponentCadence:
			item.Title = "Schedule a regular check-in"
			item.Description = "Establish a recurring touchpoint to close long gaps between conversations."
			item.Category = "relationship"
		default:
			item.Title = "Schedule customer check-in call"
			item.Description = "Reach out to understand current pain points and gather feedback."
			item.Category = "relationship"
		}

		items = append(items, item)
	}

	// One fallback item per factor is plenty; cap to keep the list actionable
	if len(items) > 5 {
		items = items[:5]
	}
	return items
}

func priorityForWeight(weight float64) domain.Priority {
	switch {
	case weight >= 0.8:
		return domain.PriorityCritical
	case weight >= 0.6:
		return domain.PriorityHigh
	case weight >= 0.3:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func validCategory(category string) string {
	switch category {
	case "engagement", "support", "relationship", "technical", "billing":
		return category
	default:
		return "engagement"
	}
}
