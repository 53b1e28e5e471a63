package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/StoreFox/app/controllers"
)

type WebhookRouter struct {
	deps Dependencies
}

func NewWebhookRouter(deps Dependencies) *WebhookRouter {
	return &WebhookRouter{deps: deps}
}

// InstallRouter registers the provider callbacks. They authenticate by
// signature, so no session or basic auth applies.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	payments := controllers.NewPaymentWebhookController(h.deps.Guard, h.deps.Orders, h.deps.PaymentNotifier, h.deps.WebhookSecret)
	if h.deps.Suspension != nil {
		payments.WithUnpaidOrders(h.deps.Suspension)
	}
	app.Post("/webhooks/payments/:provider", payments.HandlePaymentWebhook)
}
