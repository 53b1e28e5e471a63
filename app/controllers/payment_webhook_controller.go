package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/StoreFox/app/models"
	"github.com/ManuelReschke/StoreFox/app/repository"
	"github.com/ManuelReschke/StoreFox/internal/pkg/payment"
	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
	"github.com/ManuelReschke/StoreFox/internal/pkg/webhookguard"
)

// PaymentNotifier sends the buyer's payment confirmation.
type PaymentNotifier interface {
	PaymentConfirmed(ctx context.Context, email, reference string, amount int64, currency string) error
}

// UnpaidOrderRecorder feeds expired and cancelled orders into the suspension policy.
type UnpaidOrderRecorder interface {
	RecordUnpaidOrder(ctx context.Context, customerID string, in suspension.UnpaidOrderInput) error
	EvaluateAndApplySuspension(ctx context.Context, customerID string) (*suspension.EvaluationResult, error)
}

// PaymentWebhookController accepts payment provider callbacks
type PaymentWebhookController struct {
	guard     webhookguard.Guard
	orders    repository.OrderRepository
	notifier  PaymentNotifier
	unpaid    UnpaidOrderRecorder
	secretFor func(provider string) string
}

// NewPaymentWebhookController wires the intake. secretFor returns the shared
// secret of a provider, or "" when the provider is not configured.
func NewPaymentWebhookController(guard webhookguard.Guard, orders repository.OrderRepository, notifier PaymentNotifier, secretFor func(string) string) *PaymentWebhookController {
	if secretFor == nil {
		secretFor = payment.SecretFromEnv
	}
	return &PaymentWebhookController{guard: guard, orders: orders, notifier: notifier, secretFor: secretFor}
}

// WithUnpaidOrders records orders the provider reports as expired or cancelled.
func (pc *PaymentWebhookController) WithUnpaidOrders(recorder UnpaidOrderRecorder) *PaymentWebhookController {
	pc.unpaid = recorder
	return pc
}

// HandlePaymentWebhook processes one delivery. Providers retry on non-2xx, so
// anything that was handled or deliberately ignored answers 200.
func (pc *PaymentWebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	provider := strings.ToLower(strings.TrimSpace(c.Params("provider")))
	rawBody := append([]byte(nil), c.BodyRaw()...)

	secret := pc.secretFor(provider)
	if secret == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_provider"})
	}
	if !payment.VerifySignature(rawBody, c.Get(payment.SignatureHeader), secret) {
		log.Warnf("[Webhook] Invalid signature from %s", provider)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := payment.ParseEvent(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	eventID := webhookguard.EventID(provider, event.EventID)
	claimed, err := pc.guard.Claim(ctx, eventID)
	if err != nil {
		log.Errorf("[Webhook] Dedup check failed for %s: %v", eventID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "dedup_unavailable"})
	}
	if !claimed {
		log.Infof("[Webhook] Duplicate delivery %s skipped", eventID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	status, ok := payment.MapProviderStatus(provider, event.Status)
	if !ok {
		log.Infof("[Webhook] Ignoring %s: unknown status %q", eventID, event.Status)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	order, err := pc.orders.GetByReference(event.OrderReference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Webhook] %s references unknown order %s", eventID, event.OrderReference)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		pc.release(ctx, eventID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "order_lookup_failed"})
	}

	if order.Status == status {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "status": status})
	}
	if !allowedTransition(order, status) {
		log.Infof("[Webhook] %s: order %s stays %s (got %s)", eventID, order.Reference, order.Status, status)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	if err := pc.orders.UpdateStatus(order.ID, status, provider); err != nil {
		log.Errorf("[Webhook] Updating order %s failed: %v", order.Reference, err)
		pc.release(ctx, eventID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "order_update_failed"})
	}
	log.Infof("[Webhook] Order %s %s -> %s via %s", order.Reference, order.Status, status, provider)

	if status == models.ORDER_STATUS_PAID && pc.notifier != nil && order.CustomerEmail != "" {
		if err := pc.notifier.PaymentConfirmed(ctx, order.CustomerEmail, order.Reference, order.Amount, order.Currency); err != nil {
			log.Warnf("[Webhook] Payment confirmation for %s failed: %v", order.Reference, err)
		}
	}

	if status == models.ORDER_STATUS_EXPIRED || status == models.ORDER_STATUS_CANCELLED {
		pc.recordUnpaid(ctx, order, status)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "status": status})
}

// recordUnpaid runs after the order update; failures are logged since the
// order already carries its final status and a retry would not reach here.
func (pc *PaymentWebhookController) recordUnpaid(ctx context.Context, order *models.Order, disposition string) {
	if pc.unpaid == nil || order.CustomerEmail == "" {
		return
	}
	err := pc.unpaid.RecordUnpaidOrder(ctx, order.CustomerEmail, suspension.UnpaidOrderInput{
		OrderID:        order.Reference,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Disposition:    disposition,
		OrderCreatedAt: order.CreatedAt,
	})
	if errors.Is(err, suspension.ErrCustomerNotFound) {
		log.Infof("[Webhook] Order %s belongs to no customer account", order.Reference)
		return
	}
	if err != nil {
		log.Errorf("[Webhook] Recording unpaid order %s failed: %v", order.Reference, err)
		return
	}
	if _, err := pc.unpaid.EvaluateAndApplySuspension(ctx, order.CustomerEmail); err != nil {
		log.Errorf("[Webhook] Suspension check for %s failed: %v", order.CustomerEmail, err)
	}
}

// release lets the provider's retry be processed after a failure.
func (pc *PaymentWebhookController) release(ctx context.Context, eventID string) {
	if err := pc.guard.Release(ctx, eventID); err != nil {
		log.Errorf("[Webhook] Releasing %s failed: %v", eventID, err)
	}
}

// allowedTransition keeps settled orders settled; a paid order may only be refunded.
func allowedTransition(order *models.Order, next string) bool {
	if !order.IsFinal() {
		return true
	}
	return order.Status == models.ORDER_STATUS_PAID && next == models.ORDER_STATUS_REFUNDED
}
