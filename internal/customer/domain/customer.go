package domain

import "time"

// Customer represents a customer account whose Slack channels are monitored
// for relationship health.
type Customer struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	CompanyName string    `json:"company_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	SlackUserID string    `json:"slack_user_id,omitempty" gorm:"index"` // primary contact in Slack
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
