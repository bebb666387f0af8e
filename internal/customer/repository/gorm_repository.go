package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthpulse-backend/internal/customer/domain"
)

// gormCustomerRepository implements CustomerRepository using GORM
type gormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM-based CustomerRepository
func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &gormCustomerRepository{db: db}
}

func (r *gormCustomerRepository) Create(customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	return r.db.Create(customer).Error
}

func (r *gormCustomerRepository) FindByID(id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.Where("id = ?", id).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *gormCustomerRepository) FindAll(limit, offset int) ([]*domain.Customer, int64, error) {
	var customers []*domain.Customer
	var total int64

	if err := r.db.Model(&domain.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&customers).Error
	return customers, total, err
}

func (r *gormCustomerRepository) FindActive() ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := r.db.Where("is_active = ?", true).Order("created_at ASC").Find(&customers).Error
	return customers, err
}

func (r *gormCustomerRepository) Update(customer *domain.Customer) error {
	customer.UpdatedAt = time.Now()
	return r.db.Save(customer).Error
}

func (r *gormCustomerRepository) Delete(id string) error {
	// Channels keep their messages but lose the customer link; scores and
	// action items cascade with the customer.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE channels SET customer_id = NULL WHERE customer_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM action_items WHERE customer_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM health_scores WHERE customer_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Customer{}, "id = ?", id).Error
	})
}
