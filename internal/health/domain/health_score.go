package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Component names the three inspectable parts of a health score
type Component string

const (
	ComponentSentiment  Component = "sentiment"
	ComponentEngagement Component = "engagement"
	ComponentCadence    Component = "cadence"
)

// RiskFactor is a named, weighted contributor to churn probability
type RiskFactor struct {
	Label     string    `json:"label"`
	Component Component `json:"component"`
	Weight    float64   `json:"weight"` // relative weight, higher = stronger contributor
}

// RiskFactorList stores ranked risk factors as a JSONB column
type RiskFactorList []RiskFactor

func (l RiskFactorList) Value() (driver.Value, error) {
	if l == nil {
		l = RiskFactorList{}
	}
	return json.Marshal(l)
}

func (l *RiskFactorList) Scan(value interface{}) error {
	if value == nil {
		*l = RiskFactorList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for RiskFactorList")
	}
}

// HealthScore is one calculated health record for a customer. History is
// append-only: the latest score is the most recent by CreatedAt and existing
// rows are never mutated.
type HealthScore struct {
	ID         string `json:"id" gorm:"primaryKey"`
	CustomerID string `json:"customer_id" gorm:"index;not null"`

	Score int `json:"score" gorm:"not null"` // 1-10

	// Component breakdown, each 1-10 and independently inspectable
	SentimentComponent  int `json:"sentiment_component"`
	EngagementComponent int `json:"engagement_component"`
	CadenceComponent    int `json:"cadence_component"`

	// Churn prediction attached to this score
	ChurnProbability float64        `json:"churn_probability"` // 0.0 - 1.0
	RiskFactors      RiskFactorList `json:"risk_factors" gorm:"type:jsonb"`

	MessagesAnalyzed int       `json:"messages_analyzed"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`

	// InsufficientData marks scores computed from an empty window; such a
	// score is the lowest-confidence tier, not a confident measurement.
	InsufficientData bool `json:"insufficient_data"`
	// Degraded marks runs where an agent fell back to its neutral default
	// after inference failures.
	Degraded bool `json:"degraded"`

	Reasoning string    `json:"reasoning,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
