package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// MarkAbsentInterval is how often yesterday's missing records are filled in.
// The job is idempotent so running it more than once a day is harmless.
const MarkAbsentInterval = time.Hour

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	leaveRepo      leave.LeaveApplicationRepository
	shifts         attendance.ShiftPolicy
	clock          clock.Clock
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveApplicationRepository,
	shifts attendance.ShiftPolicy,
	clk clock.Clock,
) *AttendanceJobs {
	if clk == nil {
		clk = clock.Real()
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		leaveRepo:      leaveRepo,
		shifts:         shifts,
		clock:          clk,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", MarkAbsentInterval, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees closes yesterday for every active employee that never
// checked in: on_leave when an approved leave covers the date, absent otherwise.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	companyIDs, err := j.employeeRepo.GetActiveCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get companies: %w", err)
	}

	now := j.clock.Now()
	var total int64

	for _, companyID := range companyIDs {
		n, err := j.markCompany(ctx, companyID, now)
		if err != nil {
			slog.Error("Cron: Failed to mark absences", "company_id", companyID, "error", err)
			continue
		}
		total += n
	}

	slog.Info("Cron: Marked absent employees", "count", total)
	return nil
}

func (j *AttendanceJobs) markCompany(ctx context.Context, companyID string, now time.Time) (int64, error) {
	employees, err := j.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to get employees: %w", err)
	}

	// Approved leave per calendar date, fetched once per distinct date
	leaveByDate := make(map[time.Time]map[string]bool)
	onLeave := func(employeeID string, date time.Time) (bool, error) {
		covered, ok := leaveByDate[date]
		if !ok {
			apps, err := j.leaveRepo.GetApprovedCovering(ctx, companyID, date)
			if err != nil {
				return false, fmt.Errorf("failed to get approved leave: %w", err)
			}
			covered = make(map[string]bool, len(apps))
			for _, app := range apps {
				if app.Covers(date) {
					covered[app.EmployeeID] = true
				}
			}
			leaveByDate[date] = covered
		}
		return covered[employeeID], nil
	}

	var records []attendance.AttendanceDay
	for _, emp := range employees {
		if !emp.IsActive() {
			continue
		}

		shift, err := j.shifts.ShiftFor(ctx, emp.ID, now)
		if err != nil {
			slog.Warn("Cron: No shift for employee", "employee_id", emp.ID, "error", err)
			continue
		}
		yesterday := shift.LocalDate(now).AddDate(0, 0, -1)

		hasRecord, err := j.attendanceRepo.HasRecordOnDate(ctx, emp.ID, yesterday, companyID)
		if err != nil {
			return 0, fmt.Errorf("failed to check attendance of %s: %w", emp.ID, err)
		}
		if hasRecord {
			continue
		}

		day, err := attendance.NewAttendanceDay(emp.ID, companyID, yesterday)
		if err != nil {
			return 0, err
		}
		day.LocationID = emp.LocationID
		day.RequiredHours = shift.RequiredHours
		day.Status = attendance.StatusAbsent

		leaveDay, err := onLeave(emp.ID, yesterday)
		if err != nil {
			return 0, err
		}
		if leaveDay {
			day.Status = attendance.StatusOnLeave
		}

		records = append(records, day)
	}

	if len(records) == 0 {
		return 0, nil
	}

	created, err := j.attendanceRepo.BulkCreateAbsences(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create absences: %w", err)
	}
	return created, nil
}
