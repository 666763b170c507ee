package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
)
