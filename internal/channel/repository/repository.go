package repository

import (
	"time"

	"healthpulse-backend/internal/channel/domain"
)

// ChannelRepository defines data access for channels
type ChannelRepository interface {
	Create(channel *domain.Channel) error
	FindByID(id string) (*domain.Channel, error)
	FindBySlackID(slackChannelID string) (*domain.Channel, error)
	FindByCustomerID(customerID string) ([]*domain.Channel, error)
	FindMonitored() ([]*domain.Channel, error)
	FindAll(limit, offset int) ([]*domain.Channel, int64, error)
	Update(channel *domain.Channel) error
	Delete(id string) error
	CountMonitored() (int64, error)
}

// MessageRepository defines data access for ingested messages.
// InsertBatch must be duplicate-safe: rows whose (channel_id,
// slack_message_ts) already exists are silently skipped, and each call
// commits before returning so message counts read afterwards are accurate.
type MessageRepository interface {
	InsertBatch(messages []*domain.Message) (int, error)
	FindByCustomerSince(customerID string, since, until time.Time, limit int) ([]*domain.Message, error)
	FindByChannelSince(channelID string, since, until time.Time, limit int) ([]*domain.Message, error)
	CountByChannel(channelID string) (int64, error)
}
