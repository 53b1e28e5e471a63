package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ACCOUNT_STATE_ACTIVE    = "active"
	ACCOUNT_STATE_SUSPENDED = "suspended"
	ACCOUNT_STATE_BLOCKED   = "blocked"

	DISPOSITION_EXPIRED   = "expired"
	DISPOSITION_CANCELLED = "cancelled"
)

// Customer is a storefront account. Email is the customer identifier used across
// the order and payment flows and is stored normalized (see NormalizeCustomerID).
type Customer struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Email          string        `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Name           string        `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	AccountState   string        `gorm:"type:varchar(20);default:'active';index:idx_customers_state_until,priority:1" json:"account_state" validate:"oneof=active suspended blocked"`
	SuspendedUntil *time.Time    `gorm:"type:timestamp;default:null;index:idx_customers_state_until,priority:2" json:"suspended_until,omitempty"`
	UnpaidOrders   []UnpaidOrder `gorm:"foreignKey:CustomerID" json:"unpaid_orders,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// UnpaidOrder is one entry of a customer's unpaid-order history. CreatedAt is the
// time the order was placed, not the time it expired or was cancelled.
type UnpaidOrder struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	OrderID     string    `gorm:"type:varchar(100);not null" json:"order_id" validate:"required,max=100"`
	Amount      int64     `gorm:"not null;default:0" json:"amount" validate:"gte=0"`
	Currency    string    `gorm:"type:varchar(3);default:'EUR'" json:"currency" validate:"omitempty,len=3"`
	Disposition string    `gorm:"type:varchar(20);not null" json:"disposition" validate:"required,oneof=expired cancelled"`
	CreatedAt   time.Time `gorm:"type:timestamp" json:"created_at"`
}

func (c *Customer) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

func (o *UnpaidOrder) Validate() error {
	v := validator.New()

	return v.Struct(o)
}

// NewCustomer creates an active customer with a normalized identifier.
func NewCustomer(email, name string) (*Customer, error) {
	c := &Customer{
		Email:        NormalizeCustomerID(email),
		Name:         strings.TrimSpace(name),
		AccountState: ACCOUNT_STATE_ACTIVE,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NormalizeCustomerID trims and lowercases an email so lookups are case-insensitive.
func NormalizeCustomerID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// IsBlocked reports whether an administrator has blocked the account
func (c *Customer) IsBlocked() bool {
	return c.AccountState == ACCOUNT_STATE_BLOCKED
}
