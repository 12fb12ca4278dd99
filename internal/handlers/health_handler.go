package handlers

import (
	"context"
	"time"

	"github.com/elawdiya/backend/internal/database"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/events"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	rdb       *redis.Client
	publisher *events.Publisher
}

func NewHealthHandler(rdb *redis.Client, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{rdb: rdb, publisher: publisher}
}

// Check reports the database, cache and broker state. Only the database is
// required; the other two read "disabled" when not configured.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	cacheStatus := "disabled"
	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()
		cacheStatus = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			cacheStatus = "unhealthy: " + err.Error()
		}
	}

	eventsStatus := "disabled"
	if h.publisher != nil {
		eventsStatus = "ok"
		if !h.publisher.Healthy() {
			eventsStatus = "unhealthy"
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Cache:     cacheStatus,
		Events:    eventsStatus,
	})
}

// Root is the banner served at "/".
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "eLAWDIYA API is running"})
}
