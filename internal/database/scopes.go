package database

import (
	"time"

	"github.com/elawdiya/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithStatus returns a GORM scope that filters reports by status.
func WithStatus(status models.ReportStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

// CreatedSince filters rows created at or after since.
func CreatedSince(since time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", since)
	}
}

// OfViolationType filters reports by violation type. An empty type or "all"
// leaves the query untouched.
func OfViolationType(violationType string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if violationType == "" || violationType == "all" {
			return db
		}
		return db.Where("violation_type = ?", violationType)
	}
}

// OwnedBy filters reports by their submitting user.
func OwnedBy(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
