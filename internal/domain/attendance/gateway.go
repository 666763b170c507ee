package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
)

// PunchCommand is what a check-in or check-out sends to the attendance service.
type PunchCommand struct {
	EmployeeID     string
	LocationID     string
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Remarks        string
	// AttemptID identifies one user-triggered attempt end to end.
	AttemptID string
}

// Gateway is the attendance service as seen from the client. Every returned
// record is a snapshot; it may be stale after the call returns.
type Gateway interface {
	// GetTodayStatus returns nil when nothing has been recorded today.
	GetTodayStatus(ctx context.Context, employeeID string) (*AttendanceDay, error)
	CheckIn(ctx context.Context, cmd PunchCommand) (AttendanceDay, error)
	CheckOut(ctx context.Context, cmd PunchCommand) (AttendanceDay, error)
	// GetAssignedLocation returns nil when the employee has no location.
	GetAssignedLocation(ctx context.Context, employeeID string) (*location.AssignedLocation, error)
}
