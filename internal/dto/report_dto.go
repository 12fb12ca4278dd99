package dto

import "mime/multipart"

// CreateReportInput is the parsed multipart form of a report submission.
type CreateReportInput struct {
	ViolationType       string   `validate:"notblank,max=50"`
	Location            string   `validate:"notblank,max=500"`
	Description         *string  `validate:"omitempty,max=2000"`
	Latitude            *float64
	Longitude           *float64
	DetectionConfidence *float64
	Image               *multipart.FileHeader
}
