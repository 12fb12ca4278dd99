package handlers

import (
	"strconv"

	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/identity"
	"github.com/elawdiya/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ShameHandler struct {
	shameService *services.ShameService
}

func NewShameHandler(shameService *services.ShameService) *ShameHandler {
	return &ShameHandler{shameService: shameService}
}

func (h *ShameHandler) TopOffenders(c *fiber.Ctx) error {
	limit, err := queryLimit(c, services.DefaultOffenderLimit)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "limit must be a number")
	}

	violationType := c.Query("violation_type")
	if violationType == "" {
		violationType = c.Query("vehicle_type")
	}

	result, err := h.shameService.TopOffenders(c.UserContext(), services.TopOffendersQuery{
		TimeRange:     c.Query("time_range", services.DefaultTimeRange),
		ViolationType: violationType,
		Limit:         limit,
	})
	if err != nil {
		if services.IsValidation(err) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return internalError(c, "Failed to build hall of shame", err)
	}

	return c.JSON(dto.TopOffendersResponse{Data: *result})
}

func (h *ShameHandler) Leaderboard(c *fiber.Ctx) error {
	limit, err := queryLimit(c, services.DefaultLeaderboardLimit)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "limit must be a number")
	}

	var viewer *uuid.UUID
	if id, err := identity.GetUserID(c); err == nil {
		viewer = &id
	}

	resp, err := h.shameService.Leaderboard(c.UserContext(), limit, viewer)
	if err != nil {
		if services.IsValidation(err) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return internalError(c, "Failed to build leaderboard", err)
	}

	return c.JSON(resp)
}

// queryLimit reads ?limit=, returning fallback when absent. Range checks
// belong to the service.
func queryLimit(c *fiber.Ctx, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// 0 would read as "use the default" downstream.
		n = -1
	}
	return n, nil
}
