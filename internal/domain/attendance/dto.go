package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID     string  `json:"employee_id"`
	LocationID     string  `json:"location_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters,omitempty"`
	Remarks        string  `json:"remarks,omitempty"`
	AttemptID      string  `json:"attempt_id,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	return validatePunch(r.EmployeeID, r.LocationID, r.Latitude, r.Longitude, r.Remarks)
}

type CheckOutRequest struct {
	EmployeeID     string  `json:"employee_id"`
	LocationID     string  `json:"location_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters,omitempty"`
	Remarks        string  `json:"remarks,omitempty"`
	AttemptID      string  `json:"attempt_id,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	return validatePunch(r.EmployeeID, r.LocationID, r.Latitude, r.Longitude, r.Remarks)
}

func validatePunch(employeeID, locationID string, lat, lng float64, remarks string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(locationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_id",
			Message: "location_id is required",
		})
	}

	if lat < -90 || lat > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng < -180 || lng > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(remarks) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Command builds the gateway command from a request.
func (r CheckInRequest) Command() PunchCommand {
	return PunchCommand{
		EmployeeID:     r.EmployeeID,
		LocationID:     r.LocationID,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		AccuracyMeters: r.AccuracyMeters,
		Remarks:        r.Remarks,
		AttemptID:      r.AttemptID,
	}
}

func (r CheckOutRequest) Command() PunchCommand {
	return CheckInRequest(r).Command()
}

// NewPunchRequest is the inverse of Command, used by the HTTP gateway.
func NewPunchRequest(cmd PunchCommand) CheckInRequest {
	return CheckInRequest{
		EmployeeID:     cmd.EmployeeID,
		LocationID:     cmd.LocationID,
		Latitude:       cmd.Latitude,
		Longitude:      cmd.Longitude,
		AccuracyMeters: cmd.AccuracyMeters,
		Remarks:        cmd.Remarks,
		AttemptID:      cmd.AttemptID,
	}
}

// ========================================
// ATTENDANCE DAY DTOs
// ========================================

type AttendanceDayResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeName      string     `json:"employee_name,omitempty"`
	Date              string     `json:"date"`
	LocationID        *string    `json:"location_id,omitempty"`
	CheckInTime       *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime      *time.Time `json:"check_out_time,omitempty"`
	CheckInLatitude   *float64   `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64   `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64   `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64   `json:"check_out_longitude,omitempty"`
	CheckInRemarks    *string    `json:"check_in_remarks,omitempty"`
	CheckOutRemarks   *string    `json:"check_out_remarks,omitempty"`
	IsLate            bool       `json:"is_late"`
	LateMinutes       int        `json:"late_minutes"`
	IsEarlyLeave      bool       `json:"is_early_leave"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
	WorkingHours      *float64   `json:"working_hours,omitempty"`
	RequiredHours     float64    `json:"required_hours"`
	Status            string     `json:"status"`
}

func NewAttendanceDayResponse(day AttendanceDay) AttendanceDayResponse {
	var employeeName string
	if day.EmployeeName != nil {
		employeeName = *day.EmployeeName
	}

	return AttendanceDayResponse{
		ID:                day.ID,
		EmployeeID:        day.EmployeeID,
		EmployeeName:      employeeName,
		Date:              day.Date.Format("2006-01-02"),
		LocationID:        day.LocationID,
		CheckInTime:       day.CheckInTime,
		CheckOutTime:      day.CheckOutTime,
		CheckInLatitude:   day.CheckInLatitude,
		CheckInLongitude:  day.CheckInLongitude,
		CheckOutLatitude:  day.CheckOutLatitude,
		CheckOutLongitude: day.CheckOutLongitude,
		CheckInRemarks:    day.CheckInRemarks,
		CheckOutRemarks:   day.CheckOutRemarks,
		IsLate:            day.IsLate,
		LateMinutes:       day.LateMinutes,
		IsEarlyLeave:      day.IsEarlyLeave,
		EarlyLeaveMinutes: day.EarlyLeaveMinutes,
		WorkingHours:      day.WorkingHours,
		RequiredHours:     day.RequiredHours,
		Status:            string(day.Status),
	}
}

// ToEntity converts a decoded payload and rejects records that break the
// AttendanceDay invariants instead of passing half-filled data along.
func (r AttendanceDayResponse) ToEntity() (AttendanceDay, error) {
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		return AttendanceDay{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrMalformedAttendance, r.Date)
	}

	day := AttendanceDay{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		Date:              date,
		LocationID:        r.LocationID,
		CheckInTime:       r.CheckInTime,
		CheckOutTime:      r.CheckOutTime,
		CheckInLatitude:   r.CheckInLatitude,
		CheckInLongitude:  r.CheckInLongitude,
		CheckOutLatitude:  r.CheckOutLatitude,
		CheckOutLongitude: r.CheckOutLongitude,
		CheckInRemarks:    r.CheckInRemarks,
		CheckOutRemarks:   r.CheckOutRemarks,
		IsLate:            r.IsLate,
		LateMinutes:       r.LateMinutes,
		IsEarlyLeave:      r.IsEarlyLeave,
		EarlyLeaveMinutes: r.EarlyLeaveMinutes,
		WorkingHours:      r.WorkingHours,
		RequiredHours:     r.RequiredHours,
		Status:            AttendanceStatus(r.Status),
	}
	if r.EmployeeName != "" {
		name := r.EmployeeName
		day.EmployeeName = &name
	}

	if err := day.Validate(); err != nil {
		return AttendanceDay{}, err
	}
	return day, nil
}

// TodayStatusResponse answers GET /attendance/today.
type TodayStatusResponse struct {
	Date        string                 `json:"date"`
	State       State                  `json:"state"`
	CanCheckIn  bool                   `json:"can_check_in"`
	CanCheckOut bool                   `json:"can_check_out"`
	Attendance  *AttendanceDayResponse `json:"attendance,omitempty"`
}

func NewTodayStatusResponse(date time.Time, day *AttendanceDay) TodayStatusResponse {
	state := StateOf(day)
	resp := TodayStatusResponse{
		Date:        CalendarDate(date).Format("2006-01-02"),
		State:       state,
		CanCheckIn:  CanTransition(state, ActionCheckIn) == nil,
		CanCheckOut: CanTransition(state, ActionCheckOut) == nil,
	}
	if day != nil {
		r := NewAttendanceDayResponse(*day)
		resp.Attendance = &r
	}
	return resp
}

// ========================================
// LISTING DTOs
// ========================================

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !AttendanceStatus(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, late, on_leave",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                   `json:"total_count"`
	Page        int                     `json:"page"`
	Limit       int                     `json:"limit"`
	TotalPages  int                     `json:"total_pages"`
	Showing     string                  `json:"showing"`
	Attendances []AttendanceDayResponse `json:"attendances"`
}
