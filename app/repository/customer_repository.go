package repository

import (
	"github.com/ManuelReschke/StoreFox/app/models"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetByEmail retrieves a customer by the normalized email address
func (r *customerRepository) GetByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("email = ?", models.NormalizeCustomerID(email)).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List retrieves customers with pagination, newest first
func (r *customerRepository) List(offset, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Count(&count).Error
	return count, err
}
