package suspension

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuelReschke/StoreFox/app/models"
)

type fakeRepository struct {
	mu        sync.Mutex
	customers map[string]*models.Customer
	nextID    uint
	failWith  error
}

func newFakeRepository(customers ...*models.Customer) *fakeRepository {
	r := &fakeRepository{customers: make(map[string]*models.Customer)}
	for _, c := range customers {
		r.nextID++
		c.ID = r.nextID
		if c.AccountState == "" {
			c.AccountState = models.ACCOUNT_STATE_ACTIVE
		}
		r.customers[c.Email] = c
	}
	return r
}

func (r *fakeRepository) get(id string) *models.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *r.customers[id]
	return &c
}

func (r *fakeRepository) FindCustomer(_ context.Context, customerID string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	c, ok := r.customers[customerID]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := *c
	cp.UnpaidOrders = append([]models.UnpaidOrder(nil), c.UnpaidOrders...)
	return &cp, nil
}

func (r *fakeRepository) AppendUnpaidOrder(_ context.Context, customerID string, order *models.UnpaidOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	order.CustomerID = c.ID
	order.ID = uint(len(c.UnpaidOrders) + 1)
	c.UnpaidOrders = append(c.UnpaidOrders, *order)
	return nil
}

func (r *fakeRepository) SuspendIfActive(_ context.Context, customerID string, now, until time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok || EffectiveStatus(c, now) != StatusActive || c.IsBlocked() {
		return false, nil
	}
	c.AccountState = models.ACCOUNT_STATE_SUSPENDED
	c.SuspendedUntil = &until
	return true, nil
}

func (r *fakeRepository) LiftSuspension(_ context.Context, customerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return false, ErrCustomerNotFound
	}
	switch c.AccountState {
	case models.ACCOUNT_STATE_BLOCKED:
		return false, ErrAccountBlocked
	case models.ACCOUNT_STATE_SUSPENDED:
		c.AccountState = models.ACCOUNT_STATE_ACTIVE
		c.SuspendedUntil = nil
		return true, nil
	default:
		return false, nil
	}
}

func (r *fakeRepository) ListExpiredSuspensions(_ context.Context, now time.Time) ([]models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []models.Customer
	for _, c := range r.customers {
		if c.AccountState == models.ACCOUNT_STATE_SUSPENDED && c.SuspendedUntil != nil && !c.SuspendedUntil.After(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepository) LiftIfExpired(_ context.Context, customerID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok || c.AccountState != models.ACCOUNT_STATE_SUSPENDED || c.SuspendedUntil == nil || c.SuspendedUntil.After(now) {
		return false, nil
	}
	c.AccountState = models.ACCOUNT_STATE_ACTIVE
	c.SuspendedUntil = nil
	return true, nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	suspended   []string
	reactivated []string
	err         error
}

func (n *recordingNotifier) AccountSuspended(_ context.Context, customerID string, _ time.Time, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.suspended = append(n.suspended, customerID)
	return n.err
}

func (n *recordingNotifier) AccountReactivated(_ context.Context, customerID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reactivated = append(n.reactivated, customerID)
	return n.err
}

var errNotifierDown = errors.New("mail queue down")
