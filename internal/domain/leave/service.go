package leave

import (
	"context"
)

// LeaveService is the server-side authority for leave approval. Every
// mutation passes the same PermissionGate the client runs.
type LeaveService interface {
	ListApplications(ctx context.Context, filter LeaveApplicationFilter) (ListLeaveApplicationResponse, error)
	GetApplication(ctx context.Context, id string) (LeaveApplicationResponse, error)
	Approve(ctx context.Context, id string) (LeaveApplicationResponse, error)
	Reject(ctx context.Context, id string, req RejectLeaveRequest) (LeaveApplicationResponse, error)
	Modify(ctx context.Context, id string, req ModifyLeaveRequest) (LeaveApplicationResponse, error)
	Revoke(ctx context.Context, id string) (LeaveApplicationResponse, error)
}
