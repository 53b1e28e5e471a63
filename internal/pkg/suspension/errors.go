package suspension

import (
	"errors"
	"fmt"
)

var (
	// ErrCustomerNotFound is returned when a customer identifier does not resolve.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrStoreUnavailable wraps failures of the underlying database.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAccountBlocked is returned when a policy mutation targets a blocked account.
	ErrAccountBlocked = errors.New("account is blocked")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
