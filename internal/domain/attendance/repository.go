package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access.
type AttendanceRepository interface {
	// Create inserts the first record of an employee-day. A second insert for
	// the same employee and date fails with ErrDuplicateAttempt.
	Create(ctx context.Context, day AttendanceDay) (AttendanceDay, error)

	GetByID(ctx context.Context, id string, companyID string) (AttendanceDay, error)

	// GetByEmployeeAndDate returns nil when the employee has no record on date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*AttendanceDay, error)

	// CompleteCheckOut writes the check-out half of a record that has none yet.
	// It fails with ErrAlreadyCheckedOut when another request got there first.
	CompleteCheckOut(ctx context.Context, day AttendanceDay) error

	GetMyAttendance(ctx context.Context, employeeID string, filter MyAttendanceFilter, companyID string) ([]AttendanceDay, int64, error)

	HasRecordOnDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error)

	// BulkCreateAbsences inserts absent/on-leave records, skipping employee-days that already exist.
	BulkCreateAbsences(ctx context.Context, days []AttendanceDay) (int64, error)
}
