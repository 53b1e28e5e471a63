package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("  Alice@Example.COM ", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, ACCOUNT_STATE_ACTIVE, c.AccountState)
	assert.Nil(t, c.SuspendedUntil)

	_, err = NewCustomer("not-an-email", "")
	assert.Error(t, err)
}

func TestCustomerValidate_AccountState(t *testing.T) {
	c := &Customer{Email: "bob@example.com", AccountState: "frozen"}
	assert.Error(t, c.Validate())

	for _, state := range []string{ACCOUNT_STATE_ACTIVE, ACCOUNT_STATE_SUSPENDED, ACCOUNT_STATE_BLOCKED} {
		c.AccountState = state
		assert.NoError(t, c.Validate(), state)
	}
}

func TestCustomerIsBlocked(t *testing.T) {
	assert.True(t, (&Customer{AccountState: ACCOUNT_STATE_BLOCKED}).IsBlocked())
	assert.False(t, (&Customer{AccountState: ACCOUNT_STATE_SUSPENDED}).IsBlocked())
}

func TestUnpaidOrderValidate(t *testing.T) {
	tests := []struct {
		name  string
		order UnpaidOrder
		ok    bool
	}{
		{"expired", UnpaidOrder{OrderID: "o-1", Disposition: "expired", Currency: "EUR"}, true},
		{"cancelled without currency", UnpaidOrder{OrderID: "o-2", Disposition: "cancelled"}, true},
		{"missing order id", UnpaidOrder{Disposition: "expired"}, false},
		{"unknown disposition", UnpaidOrder{OrderID: "o-3", Disposition: "paid"}, false},
		{"negative amount", UnpaidOrder{OrderID: "o-4", Disposition: "expired", Amount: -1}, false},
		{"bad currency", UnpaidOrder{OrderID: "o-5", Disposition: "expired", Currency: "EURO"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestOrderIsFinal(t *testing.T) {
	for status, final := range map[string]bool{
		ORDER_STATUS_PENDING:   false,
		ORDER_STATUS_FAILED:    false,
		ORDER_STATUS_EXPIRED:   false,
		ORDER_STATUS_PAID:      true,
		ORDER_STATUS_REFUNDED:  true,
		ORDER_STATUS_CANCELLED: true,
	} {
		assert.Equal(t, final, (&Order{Status: status}).IsFinal(), status)
	}
}
