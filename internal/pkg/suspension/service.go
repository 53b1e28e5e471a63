package suspension

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/StoreFox/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Notifier delivers account notifications. Implementations are expected to hand
// the work to an asynchronous, retrying channel and return quickly.
type Notifier interface {
	AccountSuspended(ctx context.Context, customerID string, until time.Time, unpaidCount int) error
	AccountReactivated(ctx context.Context, customerID string) error
}

// UnpaidOrderInput describes an order that expired or was cancelled without payment.
type UnpaidOrderInput struct {
	OrderID        string
	Amount         int64
	Currency       string
	Disposition    string
	OrderCreatedAt time.Time
}

// EvaluationResult is returned by EvaluateAndApplySuspension.
type EvaluationResult struct {
	Suspended      bool       `json:"suspended"`
	UnpaidCount    int        `json:"unpaid_count"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

// StatusView is the display shape of a customer's suspension state.
type StatusView struct {
	CustomerID     string     `json:"customer_id"`
	Status         string     `json:"status"`
	UnpaidCount    int        `json:"unpaid_count"`
	Threshold      int        `json:"threshold"`
	Remaining      int        `json:"remaining"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

// Service applies the unpaid-order suspension policy.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates a policy service from an injected repository and notifier.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceFromDB creates a policy service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), notifier)
}

// WithClock replaces the time source, used by tests and replays.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordUnpaidOrder appends an unpaid order to the customer's history. It does
// not evaluate the suspension policy.
func (s *Service) RecordUnpaidOrder(ctx context.Context, customerID string, in UnpaidOrderInput) error {
	id := models.NormalizeCustomerID(customerID)
	if id == "" {
		return ErrCustomerNotFound
	}

	createdAt := in.OrderCreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "EUR"
	}

	order := &models.UnpaidOrder{
		OrderID:     strings.TrimSpace(in.OrderID),
		Amount:      in.Amount,
		Currency:    currency,
		Disposition: strings.ToLower(strings.TrimSpace(in.Disposition)),
		CreatedAt:   createdAt.UTC(),
	}
	if err := order.Validate(); err != nil {
		return fmt.Errorf("invalid unpaid order: %w", err)
	}

	if err := s.repo.AppendUnpaidOrder(ctx, id, order); err != nil {
		return err
	}
	log.Infof("[Suspension] Recorded %s order %s for %s", order.Disposition, order.OrderID, id)
	return nil
}

// EvaluateAndApplySuspension suspends the customer when the recent unpaid count
// reaches the threshold. An account that is already suspended keeps its current
// end date; a lapsed suspension counts as active. Blocked accounts are never touched.
func (s *Service) EvaluateAndApplySuspension(ctx context.Context, customerID string) (*EvaluationResult, error) {
	id := models.NormalizeCustomerID(customerID)
	c, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &EvaluationResult{UnpaidCount: CountRecentUnpaidOrders(c.UnpaidOrders, now)}
	if !ShouldSuspend(result.UnpaidCount) || EffectiveStatus(c, now) != StatusActive {
		return result, nil
	}

	until := now.Add(SuspensionDuration)
	suspended, err := s.repo.SuspendIfActive(ctx, id, now, until)
	if err != nil {
		return nil, err
	}
	if !suspended {
		// Another request won the transition.
		return result, nil
	}

	result.Suspended = true
	result.SuspendedUntil = &until
	log.Infof("[Suspension] Suspended %s until %s (%d unpaid orders)", id, until.Format(time.RFC3339), result.UnpaidCount)

	if s.notifier != nil {
		if err := s.notifier.AccountSuspended(ctx, id, until, result.UnpaidCount); err != nil {
			log.Warnf("[Suspension] Suspension notice for %s failed: %v", id, err)
		}
	}
	return result, nil
}

// LiftSuspension reactivates a suspended account. It reports whether the stored
// state changed; calling it on an active account is a no-op.
func (s *Service) LiftSuspension(ctx context.Context, customerID string) (bool, error) {
	id := models.NormalizeCustomerID(customerID)
	lifted, err := s.repo.LiftSuspension(ctx, id)
	if err != nil {
		return false, err
	}
	if !lifted {
		return false, nil
	}

	log.Infof("[Suspension] Lifted suspension for %s", id)
	s.notifyReactivated(ctx, id)
	return true, nil
}

// AutoReactivateExpiredSuspensions lifts every suspension whose end date has
// passed and returns how many accounts were reactivated.
func (s *Service) AutoReactivateExpiredSuspensions(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.ListExpiredSuspensions(ctx, now)
	if err != nil {
		return 0, err
	}

	reactivated := 0
	var errs []error
	for _, c := range expired {
		lifted, err := s.repo.LiftIfExpired(ctx, c.Email, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("reactivate %s: %w", c.Email, err))
			continue
		}
		if !lifted {
			continue
		}
		reactivated++
		s.notifyReactivated(ctx, c.Email)
	}

	if reactivated > 0 {
		log.Infof("[Suspension] Auto-reactivated %d accounts", reactivated)
	}
	return reactivated, errors.Join(errs...)
}

// Status returns the effective suspension state for display.
func (s *Service) Status(ctx context.Context, customerID string) (*StatusView, error) {
	id := models.NormalizeCustomerID(customerID)
	c, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	view := &StatusView{
		CustomerID:  id,
		Status:      EffectiveStatus(c, now),
		UnpaidCount: CountRecentUnpaidOrders(c.UnpaidOrders, now),
		Threshold:   UnpaidThreshold,
	}
	if view.UnpaidCount < UnpaidThreshold {
		view.Remaining = UnpaidThreshold - view.UnpaidCount
	}
	if view.Status == StatusSuspended {
		view.SuspendedUntil = c.SuspendedUntil
	}
	return view, nil
}

func (s *Service) notifyReactivated(ctx context.Context, customerID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AccountReactivated(ctx, customerID); err != nil {
		log.Warnf("[Suspension] Reactivation notice for %s failed: %v", customerID, err)
	}
}
