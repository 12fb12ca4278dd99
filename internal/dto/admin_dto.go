package dto

import (
	"time"

	"github.com/elawdiya/backend/internal/models"
	"github.com/google/uuid"
)

type VerifyReportRequest struct {
	ReportID string  `json:"report_id" validate:"required,uuid"`
	Verified *bool   `json:"verified" validate:"required"`
	Reason   *string `json:"reason" validate:"omitempty,max=500"`
}

type PendingReport struct {
	ID            uuid.UUID `json:"id"`
	ViolationType string    `json:"violation_type"`
	Location      string    `json:"location"`
	Description   *string   `json:"description"`
	ImageURL      *string   `json:"image_url"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	ReporterName  string    `json:"reporter_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdminStats struct {
	TotalReports    int64 `json:"totalReports"`
	VerifiedReports int64 `json:"verifiedReports"`
	PendingReports  int64 `json:"pendingReports"`
}

type PendingReportsResponse struct {
	PendingReports []PendingReport `json:"pendingReports"`
	Stats          AdminStats      `json:"stats"`
}

type VerifyReportResponse struct {
	Message string         `json:"message"`
	Report  *models.Report `json:"report"`
}
