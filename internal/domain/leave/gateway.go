package leave

import "context"

// Gateway is the leave service as seen from the client.
type Gateway interface {
	Get(ctx context.Context, id string) (LeaveApplication, error)
	Approve(ctx context.Context, id string) (LeaveApplication, error)
	Reject(ctx context.Context, id string, req RejectLeaveRequest) (LeaveApplication, error)
	Modify(ctx context.Context, id string, req ModifyLeaveRequest) (LeaveApplication, error)
	Revoke(ctx context.Context, id string) (LeaveApplication, error)
}
