package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	location.LocationRepository
	shifts attendance.ShiftPolicy
	clock  clock.Clock
	events sse.Publisher
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	locationRepo location.LocationRepository,
	shifts attendance.ShiftPolicy,
	clk clock.Clock,
	events sse.Publisher,
) attendance.AttendanceService {
	if clk == nil {
		clk = clock.Real()
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		LocationRepository:   locationRepo,
		shifts:               shifts,
		clock:                clk,
		events:               events,
	}
}

// GetTodayStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayStatus(ctx context.Context) (attendance.TodayStatusResponse, error) {
	p, err := auth.RequireEmployee(ctx)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	now := a.clock.Now()
	shift, err := a.shifts.ShiftFor(ctx, p.EmployeeID, now)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to resolve shift: %w", err)
	}
	date := shift.LocalDate(now)

	day, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, p.EmployeeID, date, p.CompanyID)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	return attendance.NewTodayStatusResponse(date, day), nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	p, err := auth.RequireEmployee(ctx)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}
	if req.EmployeeID != p.EmployeeID {
		return attendance.AttendanceDayResponse{}, attendance.ErrEmployeeMismatch
	}

	assigned, err := a.verifyPosition(ctx, p, req.Command())
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	now := a.clock.Now()
	shift, err := a.shifts.ShiftFor(ctx, p.EmployeeID, now)
	if err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to resolve shift: %w", err)
	}
	date := shift.LocalDate(now)

	var created attendance.AttendanceDay
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(txCtx, p.EmployeeID, date, p.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if err := attendance.CanTransition(attendance.StateOf(existing), attendance.ActionCheckIn); err != nil {
			return err
		}

		day, err := attendance.NewAttendanceDay(p.EmployeeID, p.CompanyID, date)
		if err != nil {
			return err
		}
		isLate, lateMinutes := shift.Lateness(now)
		lat, lng := req.Latitude, req.Longitude
		nowUTC := now.UTC()

		day.LocationID = &assigned.ID
		day.CheckInTime = &nowUTC
		day.CheckInLatitude = &lat
		day.CheckInLongitude = &lng
		day.CheckInRemarks = optionalString(req.Remarks)
		day.IsLate = isLate
		day.LateMinutes = lateMinutes
		day.RequiredHours = shift.RequiredHours
		day.Status = attendance.StatusPresent
		if isLate {
			day.Status = attendance.StatusLate
		}

		created, err = a.AttendanceRepository.Create(txCtx, day)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	resp := attendance.NewAttendanceDayResponse(created)
	a.publish(p.UserID, sse.EventAttendanceCheckedIn, resp)
	slog.Info("employee checked in", "employee_id", p.EmployeeID, "attempt_id", req.AttemptID, "late_minutes", created.LateMinutes)

	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	p, err := auth.RequireEmployee(ctx)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}
	if req.EmployeeID != p.EmployeeID {
		return attendance.AttendanceDayResponse{}, attendance.ErrEmployeeMismatch
	}

	if _, err := a.verifyPosition(ctx, p, req.Command()); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	now := a.clock.Now()
	shift, err := a.shifts.ShiftFor(ctx, p.EmployeeID, now)
	if err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to resolve shift: %w", err)
	}
	date := shift.LocalDate(now)

	var completed attendance.AttendanceDay
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(txCtx, p.EmployeeID, date, p.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if err := attendance.CanTransition(attendance.StateOf(existing), attendance.ActionCheckOut); err != nil {
			return err
		}

		day := *existing
		checkIn := *day.CheckInTime
		nowUTC := now.UTC()
		lat, lng := req.Latitude, req.Longitude
		hours := attendance.WorkingHours(checkIn, nowUTC)
		// Measure against the hours fixed at check-in, if any.
		if day.RequiredHours > 0 {
			shift.RequiredHours = day.RequiredHours
		}
		day.RequiredHours = shift.RequiredHours
		isEarly, earlyMinutes := shift.EarlyLeave(checkIn, nowUTC)

		day.CheckOutTime = &nowUTC
		day.CheckOutLatitude = &lat
		day.CheckOutLongitude = &lng
		day.CheckOutRemarks = optionalString(req.Remarks)
		day.WorkingHours = &hours
		day.IsEarlyLeave = isEarly
		day.EarlyLeaveMinutes = earlyMinutes

		if err := day.Validate(); err != nil {
			return err
		}
		if err := a.AttendanceRepository.CompleteCheckOut(txCtx, day); err != nil {
			return fmt.Errorf("failed to record check-out: %w", err)
		}
		completed = day
		return nil
	})
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	resp := attendance.NewAttendanceDayResponse(completed)
	a.publish(p.UserID, sse.EventAttendanceCheckedOut, resp)
	slog.Info("employee checked out", "employee_id", p.EmployeeID, "attempt_id", req.AttemptID, "working_hours", *completed.WorkingHours)

	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	p, err := auth.RequireEmployee(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	days, total, err := a.AttendanceRepository.GetMyAttendance(ctx, p.EmployeeID, filter, p.CompanyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceDayResponse, 0, len(days))
	for _, day := range days {
		responses = append(responses, attendance.NewAttendanceDayResponse(day))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	from := (filter.Page-1)*filter.Limit + 1
	to := from + len(days) - 1
	showing := fmt.Sprintf("%d-%d of %d", from, to, total)
	if len(days) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// verifyPosition re-applies the geofence with the submitted coordinates.
// The client checks the same rule first; this is the authoritative copy.
func (a *AttendanceServiceImpl) verifyPosition(ctx context.Context, p auth.Principal, cmd attendance.PunchCommand) (location.AssignedLocation, error) {
	assigned, err := a.LocationRepository.GetAssignedByEmployeeID(ctx, p.EmployeeID, p.CompanyID)
	if err != nil {
		return location.AssignedLocation{}, err
	}
	if cmd.LocationID != assigned.ID {
		return location.AssignedLocation{}, location.ErrLocationNotFound
	}
	if !assigned.HasCoordinates() {
		return location.AssignedLocation{}, attendance.ErrLocationSetupRequired
	}

	pos := location.DevicePosition{
		Latitude:       cmd.Latitude,
		Longitude:      cmd.Longitude,
		AccuracyMeters: cmd.AccuracyMeters,
		CapturedAt:     a.clock.Now(),
	}
	if _, err := location.Require(&assigned, pos); err != nil {
		return location.AssignedLocation{}, err
	}
	return assigned, nil
}

func (a *AttendanceServiceImpl) publish(userID, name string, data interface{}) {
	if a.events == nil {
		return
	}
	a.events.Publish(userID, sse.Event{Event: name, Data: data})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
