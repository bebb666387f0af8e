package domain

import "time"

// ChannelType categorizes how a channel is shared with the customer
type ChannelType string

const (
	ChannelTypeCustomerSupport ChannelType = "customer_support"
	ChannelTypeShared          ChannelType = "shared"
	ChannelTypeDedicated       ChannelType = "dedicated"
)

// Channel represents a Slack channel that can be monitored for a customer.
// A channel may exist before it is linked to a customer; only monitored,
// linked channels participate in ingestion and scoring.
type Channel struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	SlackChannelID string      `json:"slack_channel_id" gorm:"uniqueIndex;not null"`
	Name           string      `json:"name" gorm:"not null"`
	CustomerID     *string     `json:"customer_id,omitempty" gorm:"index"`
	ChannelType    ChannelType `json:"channel_type" gorm:"default:customer_support"`
	IsMonitored    bool        `json:"is_monitored" gorm:"not null"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
