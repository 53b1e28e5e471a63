package repository

import (
	"github.com/ManuelReschke/StoreFox/app/models"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByReference(reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("reference = ?", reference).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus sets the status and the provider that reported it
func (r *orderRepository) UpdateStatus(id uint, status, provider string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "provider": provider}).Error
}
