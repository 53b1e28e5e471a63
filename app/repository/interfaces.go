package repository

import (
	"github.com/ManuelReschke/StoreFox/app/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the customer account operations used outside
// the suspension workflow.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByEmail(email string) (*models.Customer, error)
	List(offset, limit int) ([]models.Customer, error)
	Count() (int64, error)
}

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByReference(reference string) (*models.Order, error)
	UpdateStatus(id uint, status, provider string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Customer CustomerRepository
	Order    OrderRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer: NewCustomerRepository(db),
		Order:    NewOrderRepository(db),
	}
}
