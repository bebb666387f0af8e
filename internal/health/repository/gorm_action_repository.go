package repository

import (
	"time"

	"gorm.io/gorm"

	"healthpulse-backend/internal/health/domain"
)

// gormActionItemRepository implements ActionItemRepository using GORM
type gormActionItemRepository struct {
	db *gorm.DB
}

// NewGormActionItemRepository creates a new GORM-based ActionItemRepository
func NewGormActionItemRepository(db *gorm.DB) ActionItemRepository {
	return &gormActionItemRepository{db: db}
}

func (r *gormActionItemRepository) FindByID(id string) (*domain.ActionItem, error) {
	var item domain.ActionItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormActionItemRepository) Find(customerID string, status *domain.ActionStatus, priority *domain.Priority, limit, offset int) ([]*domain.ActionItem, int64, error) {
	var items []*domain.ActionItem
	var total int64

	query := r.db.Model(&domain.ActionItem{})
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if priority != nil {
		query = query.Where("priority = ?", *priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, total, err
}

func (r *gormActionItemRepository) UpdateStatus(id string, status domain.ActionStatus) (*domain.ActionItem, error) {
	item, err := r.FindByID(id)
	if err != nil || item == nil {
		return nil, err
	}

	item.Status = status
	item.UpdatedAt = time.Now()
	if status == domain.ActionStatusDone {
		now := time.Now()
		item.CompletedAt = &now
	}

	if err := r.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
