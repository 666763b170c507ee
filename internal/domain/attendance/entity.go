package attendance

import (
	"fmt"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusOnLeave AttendanceStatus = "on_leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusOnLeave:
		return true
	}
	return false
}

// AttendanceDay is the attendance record of one employee for one calendar
// date. The server creates it on the first successful check-in and fills the
// check-out half once; it is not reopened afterwards.
type AttendanceDay struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time // calendar date at 00:00 UTC
	LocationID *string

	CheckInTime       *time.Time
	CheckOutTime      *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckInRemarks    *string
	CheckOutRemarks   *string

	IsLate            bool
	LateMinutes       int
	IsEarlyLeave      bool
	EarlyLeaveMinutes int

	// WorkingHours is only set once the day is checked out.
	WorkingHours  *float64
	RequiredHours float64
	Status        AttendanceStatus

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// NewAttendanceDay starts a record for employeeID on the calendar date of date.
func NewAttendanceDay(employeeID, companyID string, date time.Time) (AttendanceDay, error) {
	if employeeID == "" {
		return AttendanceDay{}, fmt.Errorf("%w: employee id is required", ErrMalformedAttendance)
	}
	if date.IsZero() {
		return AttendanceDay{}, fmt.Errorf("%w: date is required", ErrMalformedAttendance)
	}
	return AttendanceDay{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Date:       CalendarDate(date),
	}, nil
}

// Validate checks the record's invariants.
func (d AttendanceDay) Validate() error {
	if d.EmployeeID == "" {
		return fmt.Errorf("%w: employee id is required", ErrMalformedAttendance)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrMalformedAttendance)
	}
	if d.CheckOutTime != nil && d.CheckInTime == nil {
		return fmt.Errorf("%w: check-out recorded without check-in", ErrMalformedAttendance)
	}
	if d.CheckOutTime != nil && d.CheckOutTime.Before(*d.CheckInTime) {
		return fmt.Errorf("%w: check-out precedes check-in", ErrMalformedAttendance)
	}
	if d.CheckOutTime != nil && d.WorkingHours == nil {
		return fmt.Errorf("%w: check-out recorded without working hours", ErrMalformedAttendance)
	}
	if d.Status != "" && !d.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrMalformedAttendance, d.Status)
	}
	return nil
}

// CalendarDate drops the clock part of t, keeping the wall date it has in its own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
