package handlers

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/identity"
	"github.com/elawdiya/backend/internal/services"
	"github.com/elawdiya/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errNotFinite = errors.New("not a finite number")

type ReportHandler struct {
	reportService *services.ReportService
	validator     *validation.Validator
}

func NewReportHandler(reportService *services.ReportService, validator *validation.Validator) *ReportHandler {
	return &ReportHandler{reportService: reportService, validator: validator}
}

// Create accepts a multipart (or urlencoded) submission with an optional
// "image" file part.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	in := dto.CreateReportInput{
		ViolationType: c.FormValue("violation_type"),
		Location:      c.FormValue("location"),
	}
	if d := c.FormValue("description"); d != "" {
		in.Description = &d
	}
	for field, dst := range map[string]**float64{
		"latitude":             &in.Latitude,
		"longitude":            &in.Longitude,
		"detection_confidence": &in.DetectionConfidence,
	} {
		v, err := optionalFloat(c.FormValue(field))
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, field+" must be a number")
		}
		*dst = v
	}
	if fh, err := c.FormFile("image"); err == nil {
		in.Image = fh
	}

	if err := h.validator.Struct(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reportService.CreateReport(c.UserContext(), userID, &in)
	if err != nil {
		if services.IsValidation(err) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return internalError(c, "Failed to submit report", err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reports, err := h.reportService.ListUserReports(c.UserContext(), userID)
	if err != nil {
		return internalError(c, "Failed to fetch reports", err)
	}

	return c.JSON(reports)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	report, err := h.reportService.GetReport(c.UserContext(), userID, reportID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Report not found")
		case errors.Is(err, services.ErrForbidden):
			return errorJSON(c, fiber.StatusForbidden, "Not authorized to view this report")
		}
		return internalError(c, "Failed to fetch report", err)
	}

	return c.JSON(report)
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	// ParseFloat accepts NaN and Inf, which JSON cannot encode.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFinite
	}
	return &f, nil
}
