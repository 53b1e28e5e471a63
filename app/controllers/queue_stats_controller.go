package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/StoreFox/internal/pkg/jobqueue"
)

// QueueStatsSource reports job queue statistics.
type QueueStatsSource interface {
	Stats(ctx context.Context) (*jobqueue.Stats, error)
}

// QueueStatsController exposes the mail queue state to admins
type QueueStatsController struct {
	source QueueStatsSource
}

func NewQueueStatsController(source QueueStatsSource) *QueueStatsController {
	return &QueueStatsController{source: source}
}

func (qc *QueueStatsController) HandleQueueStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := qc.source.Stats(ctx)
	if err != nil {
		log.Errorf("[JobQueue] Reading stats failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue_unavailable"})
	}
	return c.JSON(stats)
}
