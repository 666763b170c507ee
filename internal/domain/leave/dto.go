package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// APPLICATION DTOs
// ========================================

type LeaveApplicationResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	EmployeeName    string     `json:"employee_name,omitempty"`
	FromDate        time.Time  `json:"from_date"`
	ToDate          time.Time  `json:"to_date"`
	TotalDays       int        `json:"total_days"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	DisplayStatus   string     `json:"display_status"`
	IsRevoked       bool       `json:"is_revoked"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedDate    *time.Time `json:"approved_date,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	ModifiedDate    *time.Time `json:"modified_date,omitempty"`
}

// NewLeaveApplicationResponse renders app with its display status as of now.
func NewLeaveApplicationResponse(app LeaveApplication, now time.Time, loc *time.Location) LeaveApplicationResponse {
	var employeeName string
	if app.EmployeeName != nil {
		employeeName = *app.EmployeeName
	}

	return LeaveApplicationResponse{
		ID:              app.ID,
		EmployeeID:      app.EmployeeID,
		EmployeeName:    employeeName,
		FromDate:        app.FromDate,
		ToDate:          app.ToDate,
		TotalDays:       app.TotalDays,
		Reason:          app.Reason,
		Status:          string(app.Status),
		DisplayStatus:   string(app.DisplayStatus(now, loc)),
		IsRevoked:       app.IsRevoked,
		ApprovedBy:      app.ApprovedBy,
		ApprovedDate:    app.ApprovedDate,
		RejectionReason: app.RejectionReason,
		RevokedAt:       app.RevokedAt,
		ModifiedDate:    app.ModifiedDate,
	}
}

// ToEntity converts a decoded payload, failing on missing required fields.
func (r LeaveApplicationResponse) ToEntity() (LeaveApplication, error) {
	if r.ID == "" {
		return LeaveApplication{}, fmt.Errorf("%w: id is required", ErrMalformedApplication)
	}
	if r.EmployeeID == "" {
		return LeaveApplication{}, fmt.Errorf("%w: employee_id is required", ErrMalformedApplication)
	}
	if r.FromDate.IsZero() || r.ToDate.IsZero() {
		return LeaveApplication{}, fmt.Errorf("%w: from_date and to_date are required", ErrMalformedApplication)
	}
	if r.ToDate.Before(r.FromDate) {
		return LeaveApplication{}, fmt.Errorf("%w: %w", ErrMalformedApplication, ErrInvalidDateRange)
	}
	status := ApplicationStatus(r.Status)
	if !status.Valid() {
		return LeaveApplication{}, fmt.Errorf("%w: unknown status %q", ErrMalformedApplication, r.Status)
	}

	app := LeaveApplication{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		FromDate:        r.FromDate,
		ToDate:          r.ToDate,
		TotalDays:       r.TotalDays,
		Reason:          r.Reason,
		Status:          status,
		IsRevoked:       r.IsRevoked,
		ApprovedBy:      r.ApprovedBy,
		ApprovedDate:    r.ApprovedDate,
		RejectionReason: r.RejectionReason,
		RevokedAt:       r.RevokedAt,
		ModifiedDate:    r.ModifiedDate,
	}
	if r.EmployeeName != "" {
		name := r.EmployeeName
		app.EmployeeName = &name
	}
	return app, nil
}

// ========================================
// ACTION DTOs
// ========================================

type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ModifyLeaveRequest struct {
	FromDate string `json:"from_date"` // YYYY-MM-DD
	ToDate   string `json:"to_date"`   // YYYY-MM-DD
	Reason   string `json:"reason,omitempty"`
}

// Dates parses the request dates. Call Validate first.
func (r ModifyLeaveRequest) Dates() (from, to time.Time) {
	from, _ = validator.IsValidDate(r.FromDate)
	to, _ = validator.IsValidDate(r.ToDate)
	return from, to
}

func (r *ModifyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.FromDate)
	if !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	to, toOK := validator.IsValidDate(r.ToDate)
	if !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}
	if fromOK && toOK && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}
	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// LISTING DTOs
// ========================================

type LeaveApplicationFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc by from_date
}

func (f *LeaveApplicationFilter) Validate() error {
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

	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}

	if f.Status != nil && !ApplicationStatus(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListLeaveApplicationResponse struct {
	TotalCount   int64                      `json:"total_count"`
	Page         int                        `json:"page"`
	Limit        int                        `json:"limit"`
	TotalPages   int                        `json:"total_pages"`
	Applications []LeaveApplicationResponse `json:"applications"`
}
