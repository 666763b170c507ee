package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const (
	pgUniqueViolation       = "23505"
	attendanceEmployeeDate  = "attendances_employee_date_key"
	attendanceSelectColumns = `
		a.id, a.employee_id, a.company_id, a.date, a.location_id,
		a.check_in_time, a.check_out_time,
		a.check_in_latitude, a.check_in_longitude, a.check_out_latitude, a.check_out_longitude,
		a.check_in_remarks, a.check_out_remarks,
		a.is_late, a.late_minutes, a.is_early_leave, a.early_leave_minutes,
		a.working_hours, a.required_hours, a.status,
		a.created_at, a.updated_at`
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row, day *attendance.AttendanceDay, extra ...interface{}) error {
	dest := []interface{}{
		&day.ID, &day.EmployeeID, &day.CompanyID, &day.Date, &day.LocationID,
		&day.CheckInTime, &day.CheckOutTime,
		&day.CheckInLatitude, &day.CheckInLongitude, &day.CheckOutLatitude, &day.CheckOutLongitude,
		&day.CheckInRemarks, &day.CheckOutRemarks,
		&day.IsLate, &day.LateMinutes, &day.IsEarlyLeave, &day.EarlyLeaveMinutes,
		&day.WorkingHours, &day.RequiredHours, &day.Status,
		&day.CreatedAt, &day.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date, location_id,
			check_in_time, check_in_latitude, check_in_longitude, check_in_remarks,
			is_late, late_minutes, required_hours, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		day.EmployeeID,
		day.CompanyID,
		day.Date,
		day.LocationID,
		day.CheckInTime,
		day.CheckInLatitude,
		day.CheckInLongitude,
		day.CheckInRemarks,
		day.IsLate,
		day.LateMinutes,
		day.RequiredHours,
		day.Status,
	).Scan(&day.ID, &day.CreatedAt, &day.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, attendanceEmployeeDate) {
			return attendance.AttendanceDay{}, attendance.ErrDuplicateAttempt
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return day, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.AttendanceDay, error) {
	if !isUUID(id) {
		return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceSelectColumns + `
		FROM attendances a
		WHERE a.id = $1 AND a.company_id = $2
	`

	var day attendance.AttendanceDay
	if err := scanAttendance(q.QueryRow(ctx, query, id, companyID), &day); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return day, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceSelectColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2
		  AND a.company_id = $3
		LIMIT 1
	`
	// Lock the row when called inside a transaction so a concurrent check-out waits
	if _, inTx := database.TxFromContext(ctx); inTx {
		query += " FOR UPDATE"
	}

	var day attendance.AttendanceDay
	if err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID), &day); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	return &day, nil
}

// CompleteCheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) CompleteCheckOut(ctx context.Context, day attendance.AttendanceDay) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_out_time = $1,
			check_out_latitude = $2,
			check_out_longitude = $3,
			check_out_remarks = $4,
			is_early_leave = $5,
			early_leave_minutes = $6,
			working_hours = $7,
			required_hours = $8,
			updated_at = NOW()
		WHERE id = $9
		  AND company_id = $10
		  AND check_out_time IS NULL
	`

	tag, err := q.Exec(ctx, query,
		day.CheckOutTime,
		day.CheckOutLatitude,
		day.CheckOutLongitude,
		day.CheckOutRemarks,
		day.IsEarlyLeave,
		day.EarlyLeaveMinutes,
		day.WorkingHours,
		day.RequiredHours,
		day.ID,
		day.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyCheckedOut
	}
	return nil
}

// GetMyAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter, companyID string) ([]attendance.AttendanceDay, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.employee_id = $1 AND a.company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY a.date %s
		LIMIT $%d OFFSET $%d
	`, attendanceSelectColumns, baseWhere, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		var day attendance.AttendanceDay
		if err := scanAttendance(rows, &day, &day.EmployeeName); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendances: %w", err)
	}

	return days, total, nil
}

// HasRecordOnDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) HasRecordOnDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM attendances
			WHERE employee_id = $1 AND date = $2 AND company_id = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, days []attendance.AttendanceDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, a.db)

	const cols = 6
	valueStrings := make([]string, 0, len(days))
	valueArgs := make([]interface{}, 0, len(days)*cols)

	for i, day := range days {
		base := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		valueArgs = append(valueArgs,
			day.EmployeeID,
			day.CompanyID,
			day.Date,
			day.LocationID,
			day.RequiredHours,
			day.Status,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO attendances (employee_id, company_id, date, location_id, required_hours, status)
		VALUES %s
		ON CONFLICT ON CONSTRAINT %s DO NOTHING
	`, strings.Join(valueStrings, ", "), attendanceEmployeeDate)

	tag, err := q.Exec(ctx, query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create absences: %w", err)
	}
	return tag.RowsAffected(), nil
}
