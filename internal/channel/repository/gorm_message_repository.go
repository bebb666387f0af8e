package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthpulse-backend/internal/channel/domain"
)

// gormMessageRepository implements MessageRepository using GORM
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based MessageRepository
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// InsertBatch stores messages with upsert-or-ignore semantics. The composite
// unique index on (channel_id, slack_message_ts) makes concurrent ingestion
// of the same channel safe without locking. The returned count only includes
// newly stored rows. GORM runs the call in its own transaction, so the batch
// is committed when this returns.
func (r *gormMessageRepository) InsertBatch(messages []*domain.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	now := time.Now()
	for _, m := range messages {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.CreatedAt = now
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}, {Name: "slack_message_ts"}},
		DoNothing: true,
	}).Create(&messages)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

func (r *gormMessageRepository) FindByCustomerSince(customerID string, since, until time.Time, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.
		Joins("JOIN channels ON channels.id = messages.channel_id").
		Where("channels.customer_id = ? AND channels.is_monitored = ?", customerID, true).
		Where("messages.message_timestamp >= ? AND messages.message_timestamp <= ?", since, until).
		Order("messages.message_timestamp ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) FindByChannelSince(channelID string, since, until time.Time, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.
		Where("channel_id = ? AND message_timestamp >= ? AND message_timestamp <= ?", channelID, since, until).
		Order("message_timestamp ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) CountByChannel(channelID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, err
}
