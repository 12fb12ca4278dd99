package services

import "errors"

var (
	ErrEmailTaken             = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidToken           = errors.New("invalid or expired refresh token")
	ErrUserNotFound           = errors.New("user not found")
	ErrReportNotFound         = errors.New("report not found")
	ErrForbidden              = errors.New("not authorized to access this resource")
	ErrReportAlreadyProcessed = errors.New("report has already been processed")
)

// ValidationError marks a request that failed input validation. Handlers map
// it to 400 and show its message to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
