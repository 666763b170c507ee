package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Company administrator - full access
	RoleManager  Role = "manager"  // Can approve and modify leave
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	EmployeeID *string
}

// IsAdmin checks if user is a company administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// CanApprove checks if user can approve requests
func (u *User) CanApprove() bool {
	return u.IsManager()
}
