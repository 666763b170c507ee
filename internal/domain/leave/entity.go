package leave

import (
	"time"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DisplayStatus is derived from the stored status and the current time. It is never persisted.
type DisplayStatus string

const (
	DisplayPending   DisplayStatus = "pending"
	DisplayRejected  DisplayStatus = "rejected"
	DisplayRevoked   DisplayStatus = "revoked"
	DisplayCompleted DisplayStatus = "completed"
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayOngoing   DisplayStatus = "ongoing"
)

// LeaveApplication entity
type LeaveApplication struct {
	ID         string
	EmployeeID string
	CompanyID  string

	// FromDate and ToDate are usually calendar dates (00:00 UTC). A FromDate
	// with a clock part names the exact instant the leave starts.
	FromDate  time.Time
	ToDate    time.Time
	TotalDays int
	Reason    string

	Status          ApplicationStatus
	IsRevoked       bool
	ApprovedBy      *string
	ApprovedDate    *time.Time
	RejectionReason *string
	RevokedBy       *string
	RevokedAt       *time.Time
	ModifiedBy      *string
	ModifiedDate    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// StartsAt is the instant the leave begins. Date-only values start at 00:00 in loc.
func (a LeaveApplication) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if !isMidnight(a.FromDate) {
		return a.FromDate
	}
	y, m, d := a.FromDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndsAt is the first instant after the last leave day, in loc.
func (a LeaveApplication) EndsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := a.ToDate.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Covers reports whether an approved, non-revoked leave includes the calendar date.
func (a LeaveApplication) Covers(date time.Time) bool {
	if a.Status != StatusApproved || a.IsRevoked {
		return false
	}
	day := calendarDate(date)
	return !day.Before(calendarDate(a.FromDate)) && !day.After(calendarDate(a.ToDate))
}

// DisplayStatus derives the label shown for the application at now.
func (a LeaveApplication) DisplayStatus(now time.Time, loc *time.Location) DisplayStatus {
	switch {
	case a.IsRevoked:
		return DisplayRevoked
	case a.Status == StatusPending:
		return DisplayPending
	case a.Status == StatusRejected:
		return DisplayRejected
	case !now.Before(a.EndsAt(loc)):
		return DisplayCompleted
	case now.Before(a.StartsAt(loc)):
		return DisplayUpcoming
	default:
		return DisplayOngoing
	}
}

// CountDays is the number of calendar days from..to, both inclusive.
func CountDays(from, to time.Time) int {
	days := int(calendarDate(to).Sub(calendarDate(from)).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
