package user

import "slices"

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Leave Management
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"
	PermissionLeaveModify  Permission = "leave.modify"
	PermissionLeaveRevoke  Permission = "leave.revoke"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveModify,
		PermissionLeaveRevoke,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionEmployeeViewAll,
	},
	RoleManager: {
		// Manager can approve and modify, but not revoke
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveModify,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionEmployeeViewAll,
	},
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	return slices.Contains(permissions, permission)
}
