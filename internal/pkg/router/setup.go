package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/StoreFox/app/controllers"
	"github.com/ManuelReschke/StoreFox/app/repository"
	"github.com/ManuelReschke/StoreFox/internal/pkg/webhookguard"
)

// Router registers a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the services the HTTP surface is built from.
type Dependencies struct {
	Suspension      controllers.SuspensionService
	Customers       repository.CustomerRepository
	Orders          repository.OrderRepository
	Guard           webhookguard.Guard
	PaymentNotifier controllers.PaymentNotifier
	QueueStats      controllers.QueueStatsSource
	Statistics      controllers.StatisticsSource
	AdminUsers      map[string]string
	// WebhookSecret resolves a provider's signing secret; nil reads the environment.
	WebhookSecret func(provider string) string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	setup(app, NewAdminRouter(deps), NewWebhookRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
