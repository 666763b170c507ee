package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleAdmin, PermissionLeaveRevoke, true},
		{RoleManager, PermissionLeaveRevoke, false},
		{RoleManager, PermissionLeaveModify, true},
		{RoleManager, PermissionLeaveApprove, true},
		{RoleEmployee, PermissionLeaveApprove, false},
		{RoleEmployee, PermissionAttendanceCreate, true},
		{Role("owner"), PermissionAttendanceCreate, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestUserRoles(t *testing.T) {
	admin := User{Role: RoleAdmin}
	manager := User{Role: RoleManager}
	employee := User{Role: RoleEmployee}

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanApprove())
	assert.False(t, manager.IsAdmin())
	assert.True(t, manager.CanApprove())
	assert.False(t, employee.CanApprove())
	assert.False(t, Role("pending").Valid())
}
