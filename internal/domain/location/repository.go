package location

import "context"

// LocationRepository reads work locations. Employees reference at most one
// assigned location; the attendance flow never mutates it.
type LocationRepository interface {
	// GetAssignedByEmployeeID returns ErrNoLocationAssigned when the employee has no location.
	GetAssignedByEmployeeID(ctx context.Context, employeeID string, companyID string) (AssignedLocation, error)
	GetByID(ctx context.Context, id string, companyID string) (AssignedLocation, error)
}
