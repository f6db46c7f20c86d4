package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers holds dependencies for health endpoints. Rdb may be nil when no
// Redis URL is configured; the cache is then reported as disabled, not down.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client

	startedAt time.Time
}

func New(db *gorm.DB, rdb *redis.Client) *Handlers {
	return &Handlers{DB: db, Rdb: rdb, startedAt: time.Now()}
}

// Live GET /health — liveness only, no dependency checks.
func (h *Handlers) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// JSON GET /health/json — readiness with per-dependency status.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := fiber.Map{}

	dbStatus := "up"
	if sqlDB, err := h.DB.DB(); err != nil {
		dbStatus = "down"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	if dbStatus == "down" {
		status = "degraded"
	}
	deps["database"] = dbStatus

	if h.Rdb == nil {
		deps["redis"] = "disabled"
	} else if err := h.Rdb.Ping(ctx).Err(); err != nil {
		deps["redis"] = "down"
		status = "degraded"
	} else {
		deps["redis"] = "up"
	}

	return c.JSON(fiber.Map{
		"service":      "folio-api",
		"status":       status,
		"uptime_sec":   int64(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}
