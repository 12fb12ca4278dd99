package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elawdiya/backend/internal/cache"
	"github.com/elawdiya/backend/internal/database"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/events"
	"github.com/elawdiya/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnonymousReporter stands in for a reporter whose user record is missing.
const AnonymousReporter = "Anonymous"

type AdminService struct {
	db        *gorm.DB
	cache     *cache.ShameCache
	publisher *events.Publisher
}

func NewAdminService(db *gorm.DB, shameCache *cache.ShameCache, publisher *events.Publisher) *AdminService {
	return &AdminService{db: db, cache: shameCache, publisher: publisher}
}

// ListPending returns every pending report with its reporter's name, oldest
// first, together with global report counts.
func (s *AdminService) ListPending(ctx context.Context, actorRole models.Role) (*dto.PendingReportsResponse, error) {
	if !actorRole.CanModerate() {
		return nil, ErrForbidden
	}
	db := s.db.WithContext(ctx)

	var reports []models.Report
	if err := db.Preload("Reporter").Scopes(database.WithStatus(models.ReportPending)).
		Order("created_at ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending reports: %w", err)
	}

	var total, verified int64
	if err := db.Model(&models.Report{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	if err := db.Model(&models.Report{}).Scopes(database.WithStatus(models.ReportVerified)).
		Count(&verified).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified reports: %w", err)
	}

	pending := make([]dto.PendingReport, len(reports))
	for i, r := range reports {
		pending[i] = dto.PendingReport{
			ID:            r.ID,
			ViolationType: r.ViolationType,
			Location:      r.Location,
			Description:   r.Description,
			ImageURL:      r.ImageURL,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			ReporterName:  reporterName(r),
			CreatedAt:     r.CreatedAt,
		}
	}

	return &dto.PendingReportsResponse{
		PendingReports: pending,
		Stats: dto.AdminStats{
			TotalReports:    total,
			VerifiedReports: verified,
			PendingReports:  int64(len(pending)),
		},
	}, nil
}

// VerifyReport moves a pending report to verified or rejected. Approval
// credits VerificationPoints to both the report and its owner in a single
// transaction. Reports that are already verified or rejected are refused,
// so points are awarded at most once per report.
func (s *AdminService) VerifyReport(ctx context.Context, actorID uuid.UUID, actorRole models.Role, reportID uuid.UUID, approve bool, reason *string) (*models.Report, error) {
	if !actorRole.CanModerate() {
		return nil, ErrForbidden
	}

	var report models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return fmt.Errorf("failed to load report: %w", err)
		}
		if report.Status.Terminal() {
			return ErrReportAlreadyProcessed
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"verified_by": actorID,
			"verified_at": now,
		}
		if approve {
			updates["status"] = models.ReportVerified
			updates["points_awarded"] = models.VerificationPoints
		} else {
			updates["status"] = models.ReportRejected
			if reason != nil && strings.TrimSpace(*reason) != "" {
				r := strings.TrimSpace(*reason)
				updates["rejection_reason"] = r
				report.RejectionReason = &r
			}
		}

		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, models.ReportPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update report: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrReportAlreadyProcessed
		}

		if approve {
			res := tx.Model(&models.User{}).
				Where("id = ?", report.UserID).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", models.VerificationPoints))
			if res.Error != nil {
				return fmt.Errorf("failed to award points: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrUserNotFound
			}
			report.Status = models.ReportVerified
			report.PointsAwarded = models.VerificationPoints
		} else {
			report.Status = models.ReportRejected
		}
		report.VerifiedBy = &actorID
		report.VerifiedAt = &now
		report.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)

	ev := events.ReportEvent{
		Type:          events.ReportRejected,
		ReportID:      report.ID,
		UserID:        report.UserID,
		ViolationType: report.ViolationType,
		Location:      report.Location,
		PointsAwarded: report.PointsAwarded,
		ActorID:       &actorID,
		OccurredAt:    *report.VerifiedAt,
	}
	if approve {
		ev.Type = events.ReportVerified
	}
	s.publisher.Publish(ctx, ev)

	return &report, nil
}

func reporterName(r models.Report) string {
	if r.Reporter.ID == uuid.Nil {
		return AnonymousReporter
	}
	return r.Reporter.Name
}
