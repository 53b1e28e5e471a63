package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/StoreFox/app/repository"
	"github.com/ManuelReschke/StoreFox/internal/pkg/cache"
	"github.com/ManuelReschke/StoreFox/internal/pkg/database"
	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
	"github.com/ManuelReschke/StoreFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/StoreFox/internal/pkg/middleware"
	"github.com/ManuelReschke/StoreFox/internal/pkg/notification"
	"github.com/ManuelReschke/StoreFox/internal/pkg/router"
	"github.com/ManuelReschke/StoreFox/internal/pkg/statistics"
	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
	"github.com/ManuelReschke/StoreFox/internal/pkg/webhookguard"
)

// Application holds the HTTP app and the background workers it owns.
type Application struct {
	App     *fiber.App
	manager *jobqueue.Manager
	guard   webhookguard.Guard
}

func main() {
	application := NewApplication()
	application.manager.Start()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
		if err := application.App.Listen(addr); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	application.Shutdown(10 * time.Second)
}

func NewApplication() *Application {
	env.SetupEnvFile()
	if env.IsDev() {
		fiberlog.SetLevel(fiberlog.LevelDebug)
	} else {
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	queue := jobqueue.NewQueue(cache.GetClient(), env.GetEnvInt("JOBQUEUE_WORKERS", jobqueue.DefaultWorkers))
	notifier := notification.NewQueueNotifierFromEnv(queue)
	svc := suspension.NewServiceFromDB(database.GetDB(), notifier)

	sweepEvery := time.Duration(env.GetEnvInt("SUSPENSION_SWEEP_INTERVAL_MINUTES", 15)) * time.Minute
	manager := jobqueue.NewManager(queue, svc, sweepEvery)
	guard := webhookguard.NewFromEnv()

	basePath := findBasePath()
	adminUsers := middleware.AdminUsersFromEnv()

	app := fiber.New(fiber.Config{
		AppName:   env.GetEnv("APP_NAME", "StoreFox"),
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	if len(adminUsers) > 0 {
		app.Get("/metrics", basicauth.New(basicauth.Config{Users: adminUsers}), monitor.New())
	}

	// SWAGGER / OPENAPI
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	} else {
		log.Println("OpenAPI document not found, /docs/api disabled")
	}

	factory := repository.GetGlobalFactory()
	router.InstallRouter(app, router.Dependencies{
		Suspension:      svc,
		Customers:       factory.GetCustomerRepository(),
		Orders:          factory.GetOrderRepository(),
		Guard:           guard,
		PaymentNotifier: notifier,
		QueueStats:      queue,
		Statistics:      statistics.NewCollectorFromDB(cache.GetClient(), database.GetDB()),
		AdminUsers:      adminUsers,
	})

	return &Application{App: app, manager: manager, guard: guard}
}

// Shutdown stops accepting requests, then stops the workers.
func (a *Application) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.App.ShutdownWithContext(ctx); err != nil {
		log.Printf("HTTP shutdown failed: %v", err)
	}
	a.manager.Stop()
	if g, ok := a.guard.(*webhookguard.MemoryGuard); ok {
		g.Stop()
	}
	if err := cache.Close(); err != nil {
		log.Printf("Closing cache failed: %v", err)
	}
}

// findBasePath locates the project root from the binary's working directory.
func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			return path
		}
	}
	return ""
}
