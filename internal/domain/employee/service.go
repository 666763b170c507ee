package employee

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
)

type EmployeeService interface {
	// GetMe resolves the employee profile of the authenticated user.
	GetMe(ctx context.Context) (EmployeeResponse, error)
	// GetAssignedLocation returns the work location of an employee in the
	// caller's company. Employees may only read their own.
	GetAssignedLocation(ctx context.Context, employeeID string) (location.AssignedLocationResponse, error)
}
