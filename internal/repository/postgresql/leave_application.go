package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const leaveSelectColumns = `
	la.id, la.employee_id, la.company_id, la.from_date, la.to_date, la.total_days, la.reason,
	la.status, la.is_revoked, la.approved_by, la.approved_date, la.rejection_reason,
	la.revoked_by, la.revoked_at, la.modified_by, la.modified_date,
	la.created_at, la.updated_at, e.full_name`

type leaveApplicationRepository struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepository{db: db}
}

// scanLeaveApplication reads one row. Leave dates are returned in UTC so a
// date-only start stays at midnight regardless of the session time zone.
func scanLeaveApplication(row pgx.Row, app *leave.LeaveApplication) error {
	err := row.Scan(
		&app.ID, &app.EmployeeID, &app.CompanyID, &app.FromDate, &app.ToDate, &app.TotalDays, &app.Reason,
		&app.Status, &app.IsRevoked, &app.ApprovedBy, &app.ApprovedDate, &app.RejectionReason,
		&app.RevokedBy, &app.RevokedAt, &app.ModifiedBy, &app.ModifiedDate,
		&app.CreatedAt, &app.UpdatedAt, &app.EmployeeName,
	)
	if err != nil {
		return err
	}
	app.FromDate = app.FromDate.UTC()
	app.ToDate = app.ToDate.UTC()
	return nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepository) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveApplication, error) {
	if !isUUID(id) {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveSelectColumns + `
		FROM leave_applications la
		LEFT JOIN employees e ON e.id = la.employee_id
		WHERE la.id = $1 AND la.company_id = $2
	`
	// Serialize concurrent approvals of the same application
	if _, inTx := database.TxFromContext(ctx); inTx {
		query += " FOR UPDATE OF la"
	}

	var app leave.LeaveApplication
	if err := scanLeaveApplication(q.QueryRow(ctx, query, id, companyID), &app); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application: %w", err)
	}
	return app, nil
}

// List implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepository) List(ctx context.Context, companyID string, filter leave.LeaveApplicationFilter) ([]leave.LeaveApplication, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "la.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		if !isUUID(*filter.EmployeeID) {
			return nil, 0, nil
		}
		baseWhere += fmt.Sprintf(" AND la.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND la.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM leave_applications la WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications la
		LEFT JOIN employees e ON e.id = la.employee_id
		WHERE %s
		ORDER BY la.from_date %s, la.id
		LIMIT $%d OFFSET $%d
	`, leaveSelectColumns, baseWhere, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		var app leave.LeaveApplication
		if err := scanLeaveApplication(rows, &app); err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read leave applications: %w", err)
	}

	return apps, total, nil
}

// Update implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepository) Update(ctx context.Context, app leave.LeaveApplication) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications SET
			from_date = $1,
			to_date = $2,
			total_days = $3,
			reason = $4,
			status = $5,
			is_revoked = $6,
			approved_by = $7,
			approved_date = $8,
			rejection_reason = $9,
			revoked_by = $10,
			revoked_at = $11,
			modified_by = $12,
			modified_date = $13,
			updated_at = NOW()
		WHERE id = $14 AND company_id = $15
	`

	tag, err := q.Exec(ctx, query,
		app.FromDate,
		app.ToDate,
		app.TotalDays,
		app.Reason,
		app.Status,
		app.IsRevoked,
		app.ApprovedBy,
		app.ApprovedDate,
		app.RejectionReason,
		app.RevokedBy,
		app.RevokedAt,
		app.ModifiedBy,
		app.ModifiedDate,
		app.ID,
		app.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveApplicationNotFound
	}
	return nil
}

// GetApprovedCovering implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepository) GetApprovedCovering(ctx context.Context, companyID string, date time.Time) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	// Compare calendar dates; from_date may carry a time of day
	query := `SELECT ` + leaveSelectColumns + `
		FROM leave_applications la
		LEFT JOIN employees e ON e.id = la.employee_id
		WHERE la.company_id = $1
		  AND la.status = 'approved'
		  AND la.is_revoked = FALSE
		  AND (la.from_date AT TIME ZONE 'UTC')::date <= $2::date
		  AND (la.to_date AT TIME ZONE 'UTC')::date >= $2::date
	`

	rows, err := q.Query(ctx, query, companyID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query approved leave: %w", err)
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		var app leave.LeaveApplication
		if err := scanLeaveApplication(rows, &app); err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read approved leave: %w", err)
	}
	return apps, nil
}
