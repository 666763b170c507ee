package attendance

import (
	"context"
)

// AttendanceService is the server-side authority for attendance records.
// The caller's identity comes from the request context.
type AttendanceService interface {
	// GetTodayStatus reports today's record and which action is allowed next
	GetTodayStatus(ctx context.Context) (TodayStatusResponse, error)

	// CheckIn validates location and schedule, then creates today's record
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceDayResponse, error)

	// CheckOut re-validates location and closes today's record
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceDayResponse, error)

	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)
}
