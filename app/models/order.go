package models

import "time"

const (
	ORDER_STATUS_PENDING   = "pending"
	ORDER_STATUS_PAID      = "paid"
	ORDER_STATUS_FAILED    = "failed"
	ORDER_STATUS_EXPIRED   = "expired"
	ORDER_STATUS_CANCELLED = "cancelled"
	ORDER_STATUS_REFUNDED  = "refunded"
)

// Order is the minimal order shape the payment webhooks update.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Reference     string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"reference"`
	CustomerEmail string    `gorm:"type:varchar(200);index" json:"customer_email"`
	Amount        int64     `gorm:"not null;default:0" json:"amount"`
	Currency      string    `gorm:"type:varchar(3);default:'EUR'" json:"currency"`
	Status        string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Provider      string    `gorm:"type:varchar(20)" json:"provider"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsFinal reports whether no further payment transition is expected.
func (o *Order) IsFinal() bool {
	switch o.Status {
	case ORDER_STATUS_PAID, ORDER_STATUS_REFUNDED, ORDER_STATUS_CANCELLED:
		return true
	default:
		return false
	}
}
