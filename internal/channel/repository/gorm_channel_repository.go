package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthpulse-backend/internal/channel/domain"
)

// gormChannelRepository implements ChannelRepository using GORM
type gormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GORM-based ChannelRepository
func NewGormChannelRepository(db *gorm.DB) ChannelRepository {
	return &gormChannelRepository{db: db}
}

func (r *gormChannelRepository) Create(channel *domain.Channel) error {
	if channel.ID == "" {
		channel.ID = uuid.New().String()
	}
	channel.CreatedAt = time.Now()
	channel.UpdatedAt = time.Now()
	return r.db.Create(channel).Error
}

func (r *gormChannelRepository) FindByID(id string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.Where("id = ?", id).First(&channel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *gormChannelRepository) FindBySlackID(slackChannelID string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.Where("slack_channel_id = ?", slackChannelID).First(&channel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *gormChannelRepository) FindByCustomerID(customerID string) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.db.Where("customer_id = ?", customerID).Order("created_at ASC").Find(&channels).Error
	return channels, err
}

func (r *gormChannelRepository) FindMonitored() ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.db.Where("is_monitored = ? AND customer_id IS NOT NULL", true).Find(&channels).Error
	return channels, err
}

func (r *gormChannelRepository) FindAll(limit, offset int) ([]*domain.Channel, int64, error) {
	var channels []*domain.Channel
	var total int64

	if err := r.db.Model(&domain.Channel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&channels).Error
	return channels, total, err
}

func (r *gormChannelRepository) Update(channel *domain.Channel) error {
	channel.UpdatedAt = time.Now()
	return r.db.Save(channel).Error
}

func (r *gormChannelRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Message{}, "channel_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Channel{}, "id = ?", id).Error
	})
}

func (r *gormChannelRepository) CountMonitored() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Channel{}).Where("is_monitored = ?", true).Count(&count).Error
	return count, err
}
