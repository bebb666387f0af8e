package domain

import "time"

// UserType classifies the author of a message
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeInternal UserType = "internal"
	UserTypeBot      UserType = "bot"
)

// Message is one ingested Slack message. The Slack message timestamp is the
// source-of-truth uniqueness key within a channel: re-fetching an overlapping
// window must never create a duplicate (channel_id, slack_message_ts) pair.
// Messages are immutable once stored.
type Message struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	ChannelID        string    `json:"channel_id" gorm:"uniqueIndex:uq_channel_message;not null"`
	SlackMessageTS   string    `json:"slack_message_ts" gorm:"uniqueIndex:uq_channel_message;not null"`
	SlackUserID      string    `json:"slack_user_id,omitempty"`
	UserType         UserType  `json:"user_type" gorm:"default:customer"`
	Content          string    `json:"content" gorm:"type:text"`
	MessageTimestamp time.Time `json:"message_timestamp" gorm:"index;not null"`
	CreatedAt        time.Time `json:"created_at"` // ingestion time
}
