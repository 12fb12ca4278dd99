package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/elawdiya/backend/internal/cache"
	"github.com/elawdiya/backend/internal/database"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/events"
	"github.com/elawdiya/backend/internal/models"
	"github.com/elawdiya/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	db        *gorm.DB
	images    *storage.ImageStore
	filter    *ContentFilter
	cache     *cache.ShameCache
	publisher *events.Publisher
}

func NewReportService(db *gorm.DB, images *storage.ImageStore, filter *ContentFilter, shameCache *cache.ShameCache, publisher *events.Publisher) *ReportService {
	return &ReportService{db: db, images: images, filter: filter, cache: shameCache, publisher: publisher}
}

// CreateReport stores the optional image, then inserts a pending report.
// If the insert fails after the image was written, the image stays on disk
// and is logged as orphaned.
func (s *ReportService) CreateReport(ctx context.Context, userID uuid.UUID, in *dto.CreateReportInput) (*models.Report, error) {
	violationType := strings.TrimSpace(in.ViolationType)
	location := strings.TrimSpace(in.Location)
	if violationType == "" {
		return nil, validationf("violation_type is required")
	}
	if location == "" {
		return nil, validationf("location is required")
	}

	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			if reason := s.filter.Check(d); reason != "" {
				return nil, validationf(RejectionMessage(reason))
			}
			description = &d
		}
	}

	confidence := 0.0
	if in.DetectionConfidence != nil {
		confidence = clampUnit(*in.DetectionConfidence)
	}

	var imageURL *string
	if in.Image != nil {
		ref, err := s.images.Save(in.Image)
		if err != nil {
			if errors.Is(err, storage.ErrImageTooLarge) || errors.Is(err, storage.ErrImageType) {
				return nil, validationf(err.Error())
			}
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		imageURL = &ref
	}

	report := models.Report{
		ID:                  uuid.New(),
		UserID:              userID,
		ViolationType:       violationType,
		Location:            location,
		Description:         description,
		ImageURL:            imageURL,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		Status:              models.ReportPending,
		DetectionConfidence: confidence,
		PointsAwarded:       0,
		CreatedAt:           time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		if imageURL != nil {
			slog.Error("report insert failed after image write, image orphaned",
				"user_id", userID.String(), "image", *imageURL, "error", err)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	// report_count on the leaderboard includes pending reports.
	s.cache.Invalidate(ctx)

	s.publisher.Publish(ctx, events.ReportEvent{
		Type:          events.ReportSubmitted,
		ReportID:      report.ID,
		UserID:        report.UserID,
		ViolationType: report.ViolationType,
		Location:      report.Location,
		OccurredAt:    report.CreatedAt,
	})

	return &report, nil
}

// ListUserReports returns every report submitted by userID, newest first.
func (s *ReportService) ListUserReports(ctx context.Context, userID uuid.UUID) ([]models.Report, error) {
	reports := make([]models.Report, 0)
	if err := s.db.WithContext(ctx).Scopes(database.OwnedBy(userID)).
		Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// GetReport returns a report only to the user who submitted it.
func (s *ReportService) GetReport(ctx context.Context, userID, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report.UserID != userID {
		return nil, ErrForbidden
	}
	return &report, nil
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
