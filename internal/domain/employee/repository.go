package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	// GetActiveCompanyIDs lists every company that still has active employees.
	GetActiveCompanyIDs(ctx context.Context) ([]string, error)
}
