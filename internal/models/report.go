package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportVerified ReportStatus = "verified"
	ReportRejected ReportStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s ReportStatus) Terminal() bool {
	return s == ReportVerified || s == ReportRejected
}

// VerificationPoints is the award credited to a reporter for each verified report.
const VerificationPoints = 10

// Report is a user-submitted traffic violation.
type Report struct {
	ID                  uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID              uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	ViolationType       string       `gorm:"size:50;not null" json:"violation_type"`
	Location            string       `gorm:"size:500;not null;index" json:"location"`
	Description         *string      `gorm:"type:text" json:"description"`
	ImageURL            *string      `gorm:"size:500" json:"image_url"`
	Latitude            *float64     `json:"latitude"`
	Longitude           *float64     `json:"longitude"`
	Status              ReportStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	DetectionConfidence float64      `gorm:"not null;default:0" json:"detection_confidence"`
	PointsAwarded       int          `gorm:"not null;default:0" json:"points_awarded"`
	RejectionReason     *string      `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt           time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	VerifiedAt          *time.Time   `json:"verified_at"`
	VerifiedBy          *uuid.UUID   `gorm:"type:uuid" json:"verified_by,omitempty"`
	Reporter            User         `gorm:"foreignKey:UserID" json:"-"`
}
