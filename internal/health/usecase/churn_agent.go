package usecase

import (
	"math"
	"sort"

	"healthpulse-backend/internal/health/domain"
)

// ChurnResult is a churn probability with its ranked risk factors
type ChurnResult struct {
	Probability float64               `json:"probability"` // 0.0 - 1.0
	RiskFactors domain.RiskFactorList `json:"risk_factors"`
}

// ChurnAgent turns the current score breakdown and score history into a
// churn probability. The model is deterministic: probability rises as the
// absolute score falls, and a declining trend over recent history raises it
// further.
type ChurnAgent struct {
	riskThreshold float64
	trendDepth    int
}

// NewChurnAgent creates a churn agent. riskThreshold is the probability
// above which at least one risk factor must be reported.
func NewChurnAgent(riskThreshold float64, trendDepth int) *ChurnAgent {
	if trendDepth <= 0 {
		trendDepth = 5
	}
	return &ChurnAgent{riskThreshold: riskThreshold, trendDepth: trendDepth}
}

// Predict computes churn probability for the current score. history is
// ordered newest first, as returned by the score repository.
func (a *ChurnAgent) Predict(current ScoreResult, history []*domain.HealthScore) ChurnResult {
	// Level term: score 10 contributes 0, score 1 contributes 0.6
	probability := float64(10-current.Score) / 9 * 0.6

	// Trend term over the most recent scores
	declining := false
	if len(history) > 0 {
		depth := a.trendDepth
		if depth > len(history) {
			depth = len(history)
		}
		var sum float64
		for _, h := range history[:depth] {
			sum += float64(h.Score)
		}
		avgRecent := sum / float64(depth)
		diff := avgRecent - float64(current.Score)

		if diff > 0 {
			declining = true
			probability += math.Min(0.3, diff*0.06)
		} else if diff < 0 {
			probability -= math.Min(0.15, -diff*0.03)
		}
	}

	probability = math.Max(0, math.Min(1, probability))
	factors := a.riskFactors(current, declining, probability)

	return ChurnResult{
		Probability: math.Round(probability*10000) / 10000,
		RiskFactors: factors,
	}
}

func (a *ChurnAgent) riskFactors(current ScoreResult, declining bool, probability float64) domain.RiskFactorList {
	factors := domain.RiskFactorList{}

	components := []struct {
		component domain.Component
		score     int
		label     string
	}{
		{domain.ComponentSentiment, current.SentimentComponent, "negative sentiment in recent conversations"},
		{domain.ComponentEngagement, current.EngagementComponent, "low engagement volume"},
		{domain.ComponentCadence, current.CadenceComponent, "irregular communication cadence"},
	}

	weakest := components[0]
	for _, c := range components {
		if c.score < weakest.score {
			weakest = c
		}
		if c.score < 6 {
			factors = append(factors, domain.RiskFactor{
				Label:     c.label,
				Component: c.component,
				Weight:    float64(6-c.score) / 5,
			})
		}
	}

	if declining {
		factors = append(factors, domain.RiskFactor{
			Label:     "declining health score trend",
			Component: weakest.component,
			Weight:    0.5,
		})
	}

	// A probability above the healthy band must name at least one factor
	if len(factors) == 0 && (probability > a.riskThreshold || probability > 1-a.riskThreshold) {
		factors = append(factors, domain.RiskFactor{
			Label:     "low overall health score",
			Component: weakest.component,
			Weight:    probability,
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Weight > factors[j].Weight
	})
	return factors
}
