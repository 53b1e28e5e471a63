package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/StoreFox/app/controllers"
	"github.com/ManuelReschke/StoreFox/internal/pkg/middleware"
)

type AdminRouter struct {
	deps Dependencies
}

func NewAdminRouter(deps Dependencies) *AdminRouter {
	return &AdminRouter{deps: deps}
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	admin := app.Group("/admin/api",
		middleware.RequireAdmin(h.deps.AdminUsers),
		limiter.New(limiter.Config{Max: 120, Expiration: time.Minute}),
	)

	customers := controllers.NewCustomerController(h.deps.Customers)
	admin.Get("/customers", customers.HandleListCustomers)
	admin.Post("/customers", customers.HandleCreateCustomer)

	suspensions := controllers.NewSuspensionController(h.deps.Suspension)
	admin.Get("/customers/:id/suspension", suspensions.HandleGetSuspension)
	admin.Post("/customers/:id/unpaid-orders", suspensions.HandleRecordUnpaidOrder)
	admin.Post("/customers/:id/evaluate", suspensions.HandleEvaluate)
	admin.Post("/customers/:id/reactivate", suspensions.HandleReactivate)
	admin.Post("/suspensions/sweep", suspensions.HandleSweep)

	if h.deps.QueueStats != nil {
		admin.Get("/queue/stats", controllers.NewQueueStatsController(h.deps.QueueStats).HandleQueueStats)
	}
	if h.deps.Statistics != nil {
		admin.Get("/statistics", controllers.NewStatisticsController(h.deps.Statistics).HandleStatistics)
	}
}
