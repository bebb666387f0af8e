package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthpulse-backend/internal/health/domain"
)

// gormHealthScoreRepository implements HealthScoreRepository using GORM
type gormHealthScoreRepository struct {
	db *gorm.DB
}

// NewGormHealthScoreRepository creates a new GORM-based HealthScoreRepository
func NewGormHealthScoreRepository(db *gorm.DB) HealthScoreRepository {
	return &gormHealthScoreRepository{db: db}
}

func (r *gormHealthScoreRepository) SaveResult(score *domain.HealthScore, items []*domain.ActionItem) error {
	now := time.Now()
	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	score.CreatedAt = now

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(score).Error; err != nil {
			return err
		}
		for _, item := range items {
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.CustomerID = score.CustomerID
			item.HealthScoreID = score.ID
			if item.Status == "" {
				item.Status = domain.ActionStatusOpen
			}
			item.CreatedAt = now
			item.UpdatedAt = now
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormHealthScoreRepository) FindByID(id string) (*domain.HealthScore, error) {
	var score domain.HealthScore
	err := r.db.Where("id = ?", id).First(&score).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}

func (r *gormHealthScoreRepository) FindLatest(customerID string) (*domain.HealthScore, error) {
	var score domain.HealthScore
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&score).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}

func (r *gormHealthScoreRepository) FindHistory(customerID string, limit int) ([]*domain.HealthScore, error) {
	var scores []*domain.HealthScore
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&scores).Error
	return scores, err
}

func (r *gormHealthScoreRepository) FindAll(limit, offset int) ([]*domain.HealthScore, int64, error) {
	var scores []*domain.HealthScore
	var total int64

	if err := r.db.Model(&domain.HealthScore{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&scores).Error
	return scores, total, err
}

// latestScorePerCustomer selects exactly one score id per customer: the most
// recent, with id breaking ties between scores persisted in the same instant.
func latestScorePerCustomer(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.HealthScore{}).
		Select("DISTINCT ON (customer_id) id").
		Order("customer_id, created_at DESC, id DESC")
}

func (r *gormHealthScoreRepository) DashboardSummary() (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	// Latest score per customer drives the averages
	err := r.db.Model(&domain.HealthScore{}).
		Where("id IN (?)", latestScorePerCustomer(r.db)).
		Select("COALESCE(AVG(score), 0)").
		Scan(&summary.AverageHealthScore).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&domain.HealthScore{}).
		Where("id IN (?)", latestScorePerCustomer(r.db)).
		Where("churn_probability >= ?", 0.5).
		Count(&summary.AtRiskCount).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&domain.ActionItem{}).
		Where("status = ?", domain.ActionStatusOpen).
		Count(&summary.OpenActionsCount).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}
