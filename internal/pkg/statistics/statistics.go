package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/StoreFox/app/models"
)

const (
	CacheKey        = "statistics:storefront"
	CacheExpiration = 5 * time.Minute
)

// Data is the admin dashboard snapshot. SuspendedCustomers only counts
// suspensions that have not expired yet. UnpaidOrdersPlacedToday counts unpaid
// orders by placement time, matching the suspension window, not by when the
// expiry or cancellation was recorded.
type Data struct {
	TotalCustomers          int64     `json:"total_customers"`
	SuspendedCustomers      int64     `json:"suspended_customers"`
	BlockedCustomers        int64     `json:"blocked_customers"`
	UnpaidOrdersPlacedToday int64     `json:"unpaid_orders_placed_today"`
	PaidOrdersToday         int64     `json:"paid_orders_today"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// CountFunc computes a fresh snapshot.
type CountFunc func(ctx context.Context) (*Data, error)

// Collector serves the snapshot from Redis and recomputes it on a miss.
type Collector struct {
	client *redis.Client
	count  CountFunc
	ttl    time.Duration
}

func NewCollector(client *redis.Client, count CountFunc) *Collector {
	return &Collector{client: client, count: count, ttl: CacheExpiration}
}

// NewCollectorFromDB counts straight from the storefront tables.
func NewCollectorFromDB(client *redis.Client, db *gorm.DB) *Collector {
	return NewCollector(client, func(ctx context.Context) (*Data, error) {
		return CountFromDB(ctx, db, time.Now().UTC())
	})
}

// Get returns the cached snapshot, computing and caching it when absent.
// A failing cache is logged and bypassed.
func (c *Collector) Get(ctx context.Context) (*Data, error) {
	raw, err := c.client.Get(ctx, CacheKey).Bytes()
	if err == nil {
		var data Data
		if err := json.Unmarshal(raw, &data); err == nil {
			return &data, nil
		}
		log.Warnf("[Statistics] Discarding unreadable cache entry")
	} else if !errors.Is(err, redis.Nil) {
		log.Warnf("[Statistics] Cache read failed: %v", err)
	}
	return c.Refresh(ctx)
}

// Refresh recomputes the snapshot and overwrites the cache.
func (c *Collector) Refresh(ctx context.Context) (*Data, error) {
	data, err := c.count(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, CacheKey, raw, c.ttl).Err(); err != nil {
		log.Warnf("[Statistics] Cache write failed: %v", err)
	}
	return data, nil
}

// CountFromDB counts customers and today's orders. The day starts at 00:00 UTC.
func CountFromDB(ctx context.Context, db *gorm.DB, now time.Time) (*Data, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	data := &Data{GeneratedAt: now}
	db = db.WithContext(ctx)

	if err := db.Model(&models.Customer{}).Count(&data.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).
		Where("account_state = ? AND suspended_until > ?", models.ACCOUNT_STATE_SUSPENDED, now).
		Count(&data.SuspendedCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).
		Where("account_state = ?", models.ACCOUNT_STATE_BLOCKED).
		Count(&data.BlockedCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.UnpaidOrder{}).
		Where("created_at >= ?", dayStart).
		Count(&data.UnpaidOrdersPlacedToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ? AND updated_at >= ?", models.ORDER_STATUS_PAID, dayStart).
		Count(&data.PaidOrdersToday).Error; err != nil {
		return nil, err
	}
	return data, nil
}
