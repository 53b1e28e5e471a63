package suspension

import (
	"time"

	"github.com/ManuelReschke/StoreFox/app/models"
)

const (
	// UnpaidThreshold is the number of recent unpaid orders that suspends an account.
	UnpaidThreshold = 3
	// TrackingPeriod is the trailing window in which unpaid orders count.
	TrackingPeriod = 30 * 24 * time.Hour
	// SuspensionDuration is how long a suspension lasts from the moment it is applied.
	SuspensionDuration = 7 * 24 * time.Hour
)

// Effective account statuses. They share their values with the stored account states.
const (
	StatusActive    = models.ACCOUNT_STATE_ACTIVE
	StatusSuspended = models.ACCOUNT_STATE_SUSPENDED
	StatusBlocked   = models.ACCOUNT_STATE_BLOCKED
)

// CountRecentUnpaidOrders counts history entries whose order creation time lies
// within TrackingPeriod before now. Entries without a timestamp never count.
func CountRecentUnpaidOrders(history []models.UnpaidOrder, now time.Time) int {
	cutoff := now.Add(-TrackingPeriod)
	count := 0
	for _, order := range history {
		if order.CreatedAt.IsZero() {
			continue
		}
		if order.CreatedAt.Before(cutoff) {
			continue
		}
		count++
	}
	return count
}

// EffectiveStatus derives the logical account status at now. A suspension whose
// end has passed reads as active even if no sweep has rewritten the stored state.
// Always use this instead of reading Customer.AccountState directly.
func EffectiveStatus(c *models.Customer, now time.Time) string {
	switch c.AccountState {
	case models.ACCOUNT_STATE_BLOCKED:
		return StatusBlocked
	case models.ACCOUNT_STATE_SUSPENDED:
		if c.SuspendedUntil != nil && c.SuspendedUntil.After(now) {
			return StatusSuspended
		}
		return StatusActive
	case "":
		return StatusActive
	default:
		return c.AccountState
	}
}

// ShouldSuspend reports whether the unpaid count reaches the threshold.
func ShouldSuspend(unpaidCount int) bool {
	return unpaidCount >= UnpaidThreshold
}
