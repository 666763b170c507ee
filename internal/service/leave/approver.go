package leave

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Actor is the approver acting on an application.
type Actor struct {
	UserID string
	Role   user.Role
}

// Approver runs the permission gate on the client before asking the leave
// service to change an application. The service applies the same gate again.
type Approver struct {
	gateway leave.Gateway
	gate    *leave.PermissionGate
}

func NewApprover(gateway leave.Gateway, gate *leave.PermissionGate) *Approver {
	return &Approver{gateway: gateway, gate: gate}
}

// Check fetches the application and evaluates action without calling the service.
func (a *Approver) Check(ctx context.Context, id string, action leave.Action, actor Actor) (leave.LeaveApplication, leave.Decision, error) {
	app, err := a.gateway.Get(ctx, id)
	if err != nil {
		return leave.LeaveApplication{}, leave.Decision{}, gatewayError(err)
	}
	return app, a.gate.Check(action, actor.Role, app), nil
}

func (a *Approver) Approve(ctx context.Context, id string, actor Actor) (leave.LeaveApplication, error) {
	return a.run(ctx, id, leave.ActionApprove, actor, func() (leave.LeaveApplication, error) {
		return a.gateway.Approve(ctx, id)
	})
}

func (a *Approver) Reject(ctx context.Context, id string, actor Actor, req leave.RejectLeaveRequest) (leave.LeaveApplication, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, err
	}
	return a.run(ctx, id, leave.ActionReject, actor, func() (leave.LeaveApplication, error) {
		return a.gateway.Reject(ctx, id, req)
	})
}

func (a *Approver) Modify(ctx context.Context, id string, actor Actor, req leave.ModifyLeaveRequest) (leave.LeaveApplication, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, err
	}
	return a.run(ctx, id, leave.ActionModify, actor, func() (leave.LeaveApplication, error) {
		return a.gateway.Modify(ctx, id, req)
	})
}

func (a *Approver) Revoke(ctx context.Context, id string, actor Actor) (leave.LeaveApplication, error) {
	return a.run(ctx, id, leave.ActionRevoke, actor, func() (leave.LeaveApplication, error) {
		return a.gateway.Revoke(ctx, id)
	})
}

func (a *Approver) run(ctx context.Context, id string, action leave.Action, actor Actor, call func() (leave.LeaveApplication, error)) (leave.LeaveApplication, error) {
	_, decision, err := a.Check(ctx, id, action, actor)
	if err != nil {
		return leave.LeaveApplication{}, err
	}
	if err := decision.Err(); err != nil {
		return leave.LeaveApplication{}, err
	}

	app, err := call()
	if err != nil {
		return leave.LeaveApplication{}, gatewayError(err)
	}
	return app, nil
}

// gatewayError keeps typed failures and wraps anything else so the message reaches the user unchanged.
func gatewayError(err error) error {
	var (
		apiErr *leave.APIError
		denial *leave.DenialError
	)
	switch {
	case errors.As(err, &apiErr),
		errors.As(err, &denial),
		errors.Is(err, leave.ErrLeaveApplicationNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &leave.APIError{Message: err.Error()}
}
