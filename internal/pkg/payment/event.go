package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/StoreFox/app/models"
)

const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
	ProviderMollie = "mollie"
)

var validate = validator.New()

// Event is the provider-neutral webhook body.
type Event struct {
	EventID        string `json:"event_id" validate:"required,max=191"`
	EventType      string `json:"event_type" validate:"omitempty,max=100"`
	OrderReference string `json:"order_reference" validate:"required,max=191"`
	Status         string `json:"status" validate:"required,max=50"`
}

// ParseEvent decodes and validates a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	ev.EventID = strings.TrimSpace(ev.EventID)
	ev.OrderReference = strings.TrimSpace(ev.OrderReference)
	ev.Status = strings.TrimSpace(ev.Status)
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return &ev, nil
}

var providerStatuses = map[string]map[string]string{
	ProviderStripe: {
		"succeeded":               models.ORDER_STATUS_PAID,
		"paid":                    models.ORDER_STATUS_PAID,
		"processing":              models.ORDER_STATUS_PENDING,
		"requires_payment_method": models.ORDER_STATUS_FAILED,
		"payment_failed":          models.ORDER_STATUS_FAILED,
		"failed":                  models.ORDER_STATUS_FAILED,
		"canceled":                models.ORDER_STATUS_CANCELLED,
		"expired":                 models.ORDER_STATUS_EXPIRED,
		"refunded":                models.ORDER_STATUS_REFUNDED,
	},
	ProviderPayPal: {
		"completed": models.ORDER_STATUS_PAID,
		"pending":   models.ORDER_STATUS_PENDING,
		"denied":    models.ORDER_STATUS_FAILED,
		"failed":    models.ORDER_STATUS_FAILED,
		"voided":    models.ORDER_STATUS_CANCELLED,
		"expired":   models.ORDER_STATUS_EXPIRED,
		"refunded":  models.ORDER_STATUS_REFUNDED,
	},
	ProviderMollie: {
		"paid":       models.ORDER_STATUS_PAID,
		"open":       models.ORDER_STATUS_PENDING,
		"pending":    models.ORDER_STATUS_PENDING,
		"authorized": models.ORDER_STATUS_PENDING,
		"failed":     models.ORDER_STATUS_FAILED,
		"canceled":   models.ORDER_STATUS_CANCELLED,
		"expired":    models.ORDER_STATUS_EXPIRED,
	},
}

var internalStatuses = map[string]struct{}{
	models.ORDER_STATUS_PENDING:   {},
	models.ORDER_STATUS_PAID:      {},
	models.ORDER_STATUS_FAILED:    {},
	models.ORDER_STATUS_EXPIRED:   {},
	models.ORDER_STATUS_CANCELLED: {},
	models.ORDER_STATUS_REFUNDED:  {},
}

// MapProviderStatus translates a provider's payment status into an order
// status. Providers without a table may send internal status names.
func MapProviderStatus(provider, status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if table, ok := providerStatuses[strings.ToLower(strings.TrimSpace(provider))]; ok {
		mapped, ok := table[status]
		return mapped, ok
	}
	if _, ok := internalStatuses[status]; ok {
		return status, true
	}
	return "", false
}
