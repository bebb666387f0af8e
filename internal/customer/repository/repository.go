package repository

import "healthpulse-backend/internal/customer/domain"

// CustomerRepository defines data access for customers
type CustomerRepository interface {
	Create(customer *domain.Customer) error
	FindByID(id string) (*domain.Customer, error)
	FindAll(limit, offset int) ([]*domain.Customer, int64, error)
	FindActive() ([]*domain.Customer, error)
	Update(customer *domain.Customer) error
	Delete(id string) error
}
