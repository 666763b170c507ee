package leave

import (
	"context"
	"time"
)

// LeaveApplicationRepository - interface for leave_applications table
type LeaveApplicationRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (LeaveApplication, error)
	List(ctx context.Context, companyID string, filter LeaveApplicationFilter) ([]LeaveApplication, int64, error)
	// Update writes the approval, revocation and date fields of app.
	Update(ctx context.Context, app LeaveApplication) error
	// GetApprovedCovering returns approved, non-revoked applications that include date.
	GetApprovedCovering(ctx context.Context, companyID string, date time.Time) ([]LeaveApplication, error)
}
