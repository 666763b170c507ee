package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	locationRepo location.LocationRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, locationRepo location.LocationRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		locationRepo: locationRepo,
	}
}

// GetMe implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMe(ctx context.Context) (employee.EmployeeResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByUserID(ctx, p.UserID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if emp.CompanyID != p.CompanyID {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	return employee.NewEmployeeResponse(emp), nil
}

// GetAssignedLocation implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetAssignedLocation(ctx context.Context, employeeID string) (location.AssignedLocationResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return location.AssignedLocationResponse{}, err
	}

	if employeeID != p.EmployeeID && !user.HasPermission(p.Role, user.PermissionEmployeeViewAll) {
		return location.AssignedLocationResponse{}, employee.ErrUnauthorized
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, p.CompanyID)
	if err != nil {
		return location.AssignedLocationResponse{}, err
	}
	if emp.LocationID == nil {
		return location.AssignedLocationResponse{}, location.ErrNoLocationAssigned
	}

	loc, err := s.locationRepo.GetByID(ctx, *emp.LocationID, p.CompanyID)
	if err != nil {
		return location.AssignedLocationResponse{}, fmt.Errorf("failed to get assigned location: %w", err)
	}

	return location.NewAssignedLocationResponse(loc), nil
}
