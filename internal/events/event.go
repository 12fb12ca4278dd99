// Package events publishes report lifecycle events to RabbitMQ so that
// downstream consumers (notifications, analytics) need not poll the database.
package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ReportSubmitted Type = "report.submitted"
	ReportVerified  Type = "report.verified"
	ReportRejected  Type = "report.rejected"
)

// ReportEvent is the JSON payload of every report lifecycle message.
type ReportEvent struct {
	Type          Type       `json:"type"`
	ReportID      uuid.UUID  `json:"report_id"`
	UserID        uuid.UUID  `json:"user_id"`
	ViolationType string     `json:"violation_type"`
	Location      string     `json:"location"`
	PointsAwarded int        `json:"points_awarded"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
