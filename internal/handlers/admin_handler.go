package handlers

import (
	"errors"

	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/identity"
	"github.com/elawdiya/backend/internal/middleware"
	"github.com/elawdiya/backend/internal/services"
	"github.com/elawdiya/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
	validator    *validation.Validator
}

func NewAdminHandler(adminService *services.AdminService, validator *validation.Validator) *AdminHandler {
	return &AdminHandler{adminService: adminService, validator: validator}
}

func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	principal, ok := c.Locals(middleware.PrincipalKey).(*identity.Principal)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.adminService.ListPending(c.UserContext(), principal.Role)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return errorJSON(c, fiber.StatusForbidden, "Admin access required")
		}
		return internalError(c, "Failed to fetch pending reports", err)
	}

	return c.JSON(resp)
}

func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	principal, ok := c.Locals(middleware.PrincipalKey).(*identity.Principal)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.VerifyReportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	reportID, err := uuid.Parse(req.ReportID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "report_id must be a valid UUID")
	}

	report, err := h.adminService.VerifyReport(c.UserContext(), principal.UserID, principal.Role, reportID, *req.Verified, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return errorJSON(c, fiber.StatusForbidden, "Admin access required")
		case errors.Is(err, services.ErrReportNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Report not found")
		case errors.Is(err, services.ErrUserNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Report owner not found")
		case errors.Is(err, services.ErrReportAlreadyProcessed):
			return errorJSON(c, fiber.StatusBadRequest, "Report has already been processed")
		}
		return internalError(c, "Failed to verify report", err)
	}

	message := "Report rejected"
	if *req.Verified {
		message = "Report verified successfully"
	}
	return c.JSON(dto.VerifyReportResponse{Message: message, Report: report})
}
