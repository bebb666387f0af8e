package usecase

import (
	"time"

	channeldomain "healthpulse-backend/internal/channel/domain"
)

// EngagementSignals captures message volume and breadth of participation
// over the analysis window.
type EngagementSignals struct {
	MessageCount     int `json:"message_count"`
	ParticipantCount int `json:"participant_count"`
	WindowDays       int `json:"window_days"`
}

// CadenceSignals captures communication rhythm: regular exchanges indicate
// health, long silences indicate risk.
type CadenceSignals struct {
	MeanGapHours    float64 `json:"mean_gap_hours"`
	LongestGapHours float64 `json:"longest_gap_hours"`
}

// ComputeEngagement derives engagement signals from the window's messages
func ComputeEngagement(messages []*channeldomain.Message, windowDays int) EngagementSignals {
	participants := make(map[string]struct{})
	for _, m := range messages {
		if m.SlackUserID != "" {
			participants[m.SlackUserID] = struct{}{}
		}
	}
	if windowDays <= 0 {
		windowDays = 1
	}
	return EngagementSignals{
		MessageCount:     len(messages),
		ParticipantCount: len(participants),
		WindowDays:       windowDays,
	}
}

// ComputeCadence derives inter-message gap signals. Messages must be in
// timestamp order. Fewer than two messages yields zero gaps.
func ComputeCadence(messages []*channeldomain.Message) CadenceSignals {
	if len(messages) < 2 {
		return CadenceSignals{}
	}

	var total time.Duration
	var longest time.Duration
	for i := 1; i < len(messages); i++ {
		gap := messages[i].MessageTimestamp.Sub(messages[i-1].MessageTimestamp)
		if gap < 0 {
			gap = -gap
		}
		total += gap
		if gap > longest {
			longest = gap
		}
	}

	mean := total / time.Duration(len(messages)-1)
	return CadenceSignals{
		MeanGapHours:    mean.Hours(),
		LongestGapHours: longest.Hours(),
	}
}
