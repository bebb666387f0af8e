package domain

import "time"

// Priority represents action item priority level
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ActionStatus represents the lifecycle state of an action item. The
// pipeline only ever creates items as open; every later transition goes
// through the management API.
type ActionStatus string

const (
	ActionStatusOpen       ActionStatus = "open"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusDone       ActionStatus = "done"
	ActionStatusDismissed  ActionStatus = "dismissed"
)

// ActionItem is a recommended follow-up task derived from risk factors
type ActionItem struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	CustomerID    string       `json:"customer_id" gorm:"index;not null"`
	HealthScoreID string       `json:"health_score_id" gorm:"index"`
	Title         string       `json:"title" gorm:"not null"`
	Description   string       `json:"description,omitempty" gorm:"type:text"`
	Priority      Priority     `json:"priority" gorm:"default:medium;index"`
	Category      string       `json:"category,omitempty"` // engagement, support, relationship, technical, billing
	Status        ActionStatus `json:"status" gorm:"default:open;index"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}
