package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthpulse-backend/internal/settings/domain"
)

// gormSettingRepository implements SettingRepository using GORM
type gormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GORM-based SettingRepository
func NewGormSettingRepository(db *gorm.DB) SettingRepository {
	return &gormSettingRepository{db: db}
}

func (r *gormSettingRepository) Get(key string) (string, error) {
	var setting domain.AppSetting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (r *gormSettingRepository) Set(key, value string) error {
	var setting domain.AppSetting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		setting = domain.AppSetting{
			ID:        uuid.New().String(),
			Key:       key,
			CreatedAt: time.Now(),
		}
	}

	setting.Value = value
	setting.UpdatedAt = time.Now()
	return r.db.Save(&setting).Error
}

func (r *gormSettingRepository) Keys() ([]string, error) {
	var keys []string
	err := r.db.Model(&domain.AppSetting{}).Order("key ASC").Pluck("key", &keys).Error
	return keys, err
}
