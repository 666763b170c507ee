package attendance

import (
	"context"
	"math"
	"time"
)

// Shift is the working-time policy an attendance day is measured against.
type Shift struct {
	// Start is the offset from local midnight at which the shift begins.
	Start         time.Duration
	GracePeriod   time.Duration
	RequiredHours float64
	Location      *time.Location
}

// ShiftPolicy resolves the shift that applies to an employee on a date.
// It is owned outside the attendance flow and injected.
type ShiftPolicy interface {
	ShiftFor(ctx context.Context, employeeID string, date time.Time) (Shift, error)
}

// FixedShiftPolicy applies the same shift to everyone.
type FixedShiftPolicy struct {
	Shift Shift
}

func (p FixedShiftPolicy) ShiftFor(_ context.Context, _ string, _ time.Time) (Shift, error) {
	return p.Shift, nil
}

func (s Shift) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// LocalDate is the calendar date t falls on in the shift's timezone.
func (s Shift) LocalDate(t time.Time) time.Time {
	return CalendarDate(t.In(s.location()))
}

// ScheduledStart is the instant the shift starts on the local date of t.
func (s Shift) ScheduledStart(t time.Time) time.Time {
	local := t.In(s.location())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location()).Add(s.Start)
}

// Lateness compares a check-in with the shift start. Arriving inside the
// grace period is not late; once late, minutes count from the shift start.
func (s Shift) Lateness(checkIn time.Time) (isLate bool, lateMinutes int) {
	scheduled := s.ScheduledStart(checkIn)
	if !checkIn.After(scheduled.Add(s.GracePeriod)) {
		return false, 0
	}
	minutes := int(math.Floor(checkIn.Sub(scheduled).Minutes()))
	return minutes > 0, minutes
}

// EarlyLeave compares the time worked with the shift's required hours.
func (s Shift) EarlyLeave(checkIn, checkOut time.Time) (isEarly bool, earlyMinutes int) {
	required := time.Duration(s.RequiredHours * float64(time.Hour))
	worked := checkOut.Sub(checkIn)
	if worked >= required {
		return false, 0
	}
	minutes := int(math.Floor((required - worked).Minutes()))
	return minutes > 0, minutes
}

// WorkingHours is the span between check-in and check-out in hours, rounded to two decimals.
func WorkingHours(checkIn, checkOut time.Time) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	if hours < 0 {
		return 0
	}
	return math.Round(hours*100) / 100
}
