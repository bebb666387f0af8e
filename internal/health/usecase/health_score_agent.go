package usecase

import (
	"fmt"
	"math"
)

// Weighting policy for the composite score. Fixed so identical inputs
// always reproduce the same score.
const (
	weightSentiment  = 0.5
	weightEngagement = 0.3
	weightCadence    = 0.2
)

// ScoreResult is a computed health score with its component breakdown
type ScoreResult struct {
	Score int `json:"score"` // 1-10, rounded half away from zero

	SentimentComponent  int `json:"sentiment_component"`
	EngagementComponent int `json:"engagement_component"`
	CadenceComponent    int `json:"cadence_component"`

	InsufficientData bool   `json:"insufficient_data"`
	Reasoning        string `json:"reasoning"`
}

// HealthScoreAgent deterministically combines sentiment, engagement and
// cadence signals into a 1-10 score. No inference call is involved: the
// weighting and rounding rules are fixed.
type HealthScoreAgent struct{}

// NewHealthScoreAgent creates a health score agent
func NewHealthScoreAgent() *HealthScoreAgent {
	return &HealthScoreAgent{}
}

// Score combines the three signal groups. Zero analyzed messages yields
// the lowest score tier flagged insufficient-data instead of a numeric
// value that looks confident.
func (a *HealthScoreAgent) Score(sentiment *SentimentResult, engagement EngagementSignals, cadence CadenceSignals) ScoreResult {
	if sentiment == nil || sentiment.Analyzed == 0 || engagement.MessageCount == 0 {
		return ScoreResult{
			Score:               1,
			SentimentComponent:  1,
			EngagementComponent: 1,
			CadenceComponent:    1,
			InsufficientData:    true,
			Reasoning:           "no messages in the analysis window; score carries no confidence",
		}
	}

	s := sentimentComponent(sentiment.AverageScore)
	e := engagementComponent(engagement)
	c := cadenceComponent(cadence)

	weighted := weightSentiment*float64(s) + weightEngagement*float64(e) + weightCadence*float64(c)
	score := clampScore(int(math.Round(weighted)))

	return ScoreResult{
		Score:               score,
		SentimentComponent:  s,
		EngagementComponent: e,
		CadenceComponent:    c,
		Reasoning: fmt.Sprintf(
			"weighted combination of sentiment %d/10 (avg %.2f, %s), engagement %d/10 (%d messages, %d participants), cadence %d/10 (mean gap %.1fh, longest %.1fh)",
			s, sentiment.AverageScore, sentiment.Trend,
			e, engagement.MessageCount, engagement.ParticipantCount,
			c, cadence.MeanGapHours, cadence.LongestGapHours,
		),
	}
}

// sentimentComponent maps the average score in [-1,1] linearly onto [1,10]
func sentimentComponent(avg float64) int {
	return clampScore(int(math.Round(5.5 + 4.5*avg)))
}

// engagementComponent blends message volume (70%) with participant breadth
// (30%). Volume saturates at 20 messages per week, participants at 4.
func engagementComponent(sig EngagementSignals) int {
	perWeek := float64(sig.MessageCount) * 7 / float64(sig.WindowDays)
	volume := math.Min(10, perWeek/2)
	participants := math.Min(10, float64(sig.ParticipantCount)*2.5)
	return clampScore(int(math.Round(0.7*volume + 0.3*participants)))
}

// cadenceComponent scores communication rhythm: a mean gap within a day is
// full marks, decaying linearly to 1 at a week. A silence longer than seven
// days costs two further points.
func cadenceComponent(sig CadenceSignals) int {
	base := 10.0
	if sig.MeanGapHours > 24 {
		base = 10 - 9*(sig.MeanGapHours-24)/(168-24)
	}
	if sig.LongestGapHours > 168 {
		base -= 2
	}
	return clampScore(int(math.Round(base)))
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
