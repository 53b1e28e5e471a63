package suspension

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/StoreFox/app/models"
	"gorm.io/gorm"
)

// Repository provides the customer store operations used by the policy engine.
// State transitions are single conditional updates so concurrent callers cannot
// apply the same transition twice.
type Repository interface {
	FindCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	AppendUnpaidOrder(ctx context.Context, customerID string, order *models.UnpaidOrder) error
	// SuspendIfActive suspends an account that is active at now, including one
	// whose previous suspension has lapsed but was not swept yet.
	SuspendIfActive(ctx context.Context, customerID string, now, until time.Time) (bool, error)
	LiftSuspension(ctx context.Context, customerID string) (bool, error)
	ListExpiredSuspensions(ctx context.Context, now time.Time) ([]models.Customer, error)
	LiftIfExpired(ctx context.Context, customerID string, now time.Time) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a suspension repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Preload("UnpaidOrders", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("email = ?", customerID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, storeError("find customer", err)
	}
	return &c, nil
}

func (r *gormRepository) AppendUnpaidOrder(ctx context.Context, customerID string, order *models.UnpaidOrder) error {
	var c models.Customer
	err := r.db.WithContext(ctx).Select("id").Where("email = ?", customerID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return storeError("resolve customer", err)
	}

	order.CustomerID = c.ID
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return storeError("append unpaid order", err)
	}
	return nil
}

func (r *gormRepository) SuspendIfActive(ctx context.Context, customerID string, now, until time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ?", customerID).
		Where(r.db.Where("account_state = ?", models.ACCOUNT_STATE_ACTIVE).
			Or("account_state = ? AND suspended_until <= ?", models.ACCOUNT_STATE_SUSPENDED, now)).
		Updates(map[string]interface{}{
			"account_state":   models.ACCOUNT_STATE_SUSPENDED,
			"suspended_until": until,
		})
	if res.Error != nil {
		return false, storeError("suspend customer", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) LiftSuspension(ctx context.Context, customerID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ? AND account_state = ?", customerID, models.ACCOUNT_STATE_SUSPENDED).
		Updates(map[string]interface{}{
			"account_state":   models.ACCOUNT_STATE_ACTIVE,
			"suspended_until": nil,
		})
	if res.Error != nil {
		return false, storeError("lift suspension", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Nothing changed: tell apart unknown, blocked and already active accounts.
	var c models.Customer
	err := r.db.WithContext(ctx).Select("id", "account_state").Where("email = ?", customerID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCustomerNotFound
		}
		return false, storeError("lift suspension", err)
	}
	if c.IsBlocked() {
		return false, ErrAccountBlocked
	}
	return false, nil
}

func (r *gormRepository) ListExpiredSuspensions(ctx context.Context, now time.Time) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).
		Where("account_state = ? AND suspended_until <= ?", models.ACCOUNT_STATE_SUSPENDED, now).
		Order("suspended_until ASC").
		Find(&customers).Error
	if err != nil {
		return nil, storeError("list expired suspensions", err)
	}
	return customers, nil
}

func (r *gormRepository) LiftIfExpired(ctx context.Context, customerID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ? AND account_state = ? AND suspended_until <= ?", customerID, models.ACCOUNT_STATE_SUSPENDED, now).
		Updates(map[string]interface{}{
			"account_state":   models.ACCOUNT_STATE_ACTIVE,
			"suspended_until": nil,
		})
	if res.Error != nil {
		return false, storeError("lift expired suspension", res.Error)
	}
	return res.RowsAffected > 0, nil
}
