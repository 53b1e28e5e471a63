package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/StoreFox/internal/pkg/statistics"
)

type StatisticsSource interface {
	Get(ctx context.Context) (*statistics.Data, error)
	Refresh(ctx context.Context) (*statistics.Data, error)
}

type StatisticsController struct {
	source StatisticsSource
}

func NewStatisticsController(source StatisticsSource) *StatisticsController {
	return &StatisticsController{source: source}
}

// HandleStatistics serves the cached snapshot; ?refresh=true recomputes it.
func (sc *StatisticsController) HandleStatistics(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	get := sc.source.Get
	if c.QueryBool("refresh") {
		get = sc.source.Refresh
	}
	data, err := get(ctx)
	if err != nil {
		log.Errorf("[Statistics] Building snapshot failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "statistics_unavailable"})
	}
	return c.JSON(data)
}
