package attendance

import "errors"

// Attendance domain errors
var (
	// Transition errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrInvalidAction     = errors.New("unknown attendance action")

	// Configuration errors
	ErrLocationSetupRequired = errors.New("your work location has no coordinates yet, ask an administrator to set it up")

	// Attempt guard errors
	ErrDuplicateAttempt  = errors.New("a check-in or check-out is already in progress")
	ErrAttemptSuperseded = errors.New("attendance attempt was superseded by a newer one")

	// General errors
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrEmployeeMismatch    = errors.New("attendance can only be recorded for your own employee account")
	ErrMalformedAttendance = errors.New("malformed attendance record")
	ErrAPIFailure          = errors.New("attendance service request failed")
)

// APIError is a failure reported by the attendance service. Message is the
// service's own text and is shown to the user unchanged.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return ErrAPIFailure
}
