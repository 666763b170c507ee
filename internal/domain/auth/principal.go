package auth

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Principal is the authenticated caller as carried in the access token.
type Principal struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

// PrincipalFromContext reads the caller from the claims jwtauth verified for this request.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Principal{}, fmt.Errorf("%w: user_id", ErrMissingClaims)
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return Principal{}, fmt.Errorf("%w: company_id", ErrMissingClaims)
	}
	role, _ := claims["role"].(string)
	if !user.Role(role).Valid() {
		return Principal{}, fmt.Errorf("%w: role", ErrMissingClaims)
	}
	// employee_id is null for accounts without an employee profile.
	employeeID, _ := claims["employee_id"].(string)

	return Principal{
		UserID:     userID,
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Role:       user.Role(role),
	}, nil
}

// RequireEmployee is PrincipalFromContext for operations that act on the caller's own employee record.
func RequireEmployee(ctx context.Context) (Principal, error) {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		return Principal{}, err
	}
	if p.EmployeeID == "" {
		return Principal{}, ErrNoEmployeeProfile
	}
	return p, nil
}
