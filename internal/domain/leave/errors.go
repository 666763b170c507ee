package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveApplicationNotFound = errors.New("leave application not found")
	ErrInvalidAction            = errors.New("unknown leave action")
	ErrInvalidDateRange         = errors.New("to_date must not be before from_date")
	ErrMalformedApplication     = errors.New("malformed leave application")
	ErrAPIFailure               = errors.New("leave service request failed")

	// Gate denials
	ErrPermissionDenied   = errors.New("your role is not allowed to perform this leave action")
	ErrLeaveRevoked       = errors.New("leave application has been revoked")
	ErrLeaveNotApproved   = errors.New("only approved leave applications can be modified or revoked")
	ErrLeaveNotPending    = errors.New("leave application has already been processed")
	ErrWithinCutoffWindow = errors.New("leave starts too soon to be changed")
)

// DenialError is a gate decision that refused an action. It unwraps to one of the gate denial errors.
type DenialError struct {
	Action         Action
	Reason         string
	HoursRemaining float64
	cause          error
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("cannot %s leave application: %s", e.Action, e.Reason)
}

func (e *DenialError) Unwrap() error {
	return e.cause
}

// APIError is a failure reported by the leave service. Message is shown unchanged.
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
