package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// Error codes clients react to. They are part of the API contract.
const (
	CodeDuplicateAttempt      = "DUPLICATE_ATTEMPT"
	CodeNoLocationAssigned    = "NO_LOCATION_ASSIGNED"
	CodeLocationSetupRequired = "LOCATION_SETUP_REQUIRED"
	CodeOutOfGeofence         = "OUT_OF_GEOFENCE"
	CodeAlreadyCheckedIn      = "ALREADY_CHECKED_IN"
	CodeAlreadyCheckedOut     = "ALREADY_CHECKED_OUT"
	CodeNotCheckedIn          = "NOT_CHECKED_IN"
	CodeLeaveActionDenied     = "LEAVE_ACTION_DENIED"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *location.OutOfGeofenceError
	if errors.As(err, &geofenceErr) {
		Error(w, http.StatusUnprocessableEntity, CodeOutOfGeofence, geofenceErr.Error(), map[string]string{
			"distance_meters":       formatFloat(geofenceErr.DistanceMeters),
			"allowed_radius_meters": formatFloat(geofenceErr.AllowedRadiusMeters),
		})
		return
	}

	var denial *leave.DenialError
	if errors.As(err, &denial) {
		details := map[string]string{
			"action": string(denial.Action),
			"reason": denial.Reason,
		}
		if errors.Is(denial, leave.ErrWithinCutoffWindow) {
			details["hours_remaining"] = formatFloat(denial.HoursRemaining)
		}
		status := http.StatusConflict
		if errors.Is(denial, leave.ErrPermissionDenied) || errors.Is(denial, leave.ErrWithinCutoffWindow) {
			status = http.StatusForbidden
		}
		Error(w, status, CodeLeaveActionDenied, denial.Error(), details)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingClaims):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrNoEmployeeProfile):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Location domain errors
	case errors.Is(err, location.ErrNoLocationAssigned):
		Error(w, http.StatusNotFound, CodeNoLocationAssigned, err.Error(), nil)
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Work location not found")
	case errors.Is(err, location.ErrNoCoordinatesConfigured),
		errors.Is(err, attendance.ErrLocationSetupRequired):
		Error(w, http.StatusConflict, CodeLocationSetupRequired, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDuplicateAttempt):
		Error(w, http.StatusConflict, CodeDuplicateAttempt, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Error(w, http.StatusConflict, CodeAlreadyCheckedIn, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Error(w, http.StatusConflict, CodeAlreadyCheckedOut, err.Error(), nil)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Error(w, http.StatusConflict, CodeNotCheckedIn, err.Error(), nil)
	case errors.Is(err, attendance.ErrEmployeeMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
