package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveApplicationRepository
	employee.EmployeeRepository
	gate   *leave.PermissionGate
	clock  clock.Clock
	events sse.Publisher
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveApplicationRepository,
	employeeRepo employee.EmployeeRepository,
	gate *leave.PermissionGate,
	clk clock.Clock,
	events sse.Publisher,
) leave.LeaveService {
	if clk == nil {
		clk = clock.Real()
	}
	return &LeaveServiceImpl{
		tx:                         tx,
		LeaveApplicationRepository: leaveRepo,
		EmployeeRepository:         employeeRepo,
		gate:                       gate,
		clock:                      clk,
		events:                     events,
	}
}

// ListApplications implements leave.LeaveService.
func (l *LeaveServiceImpl) ListApplications(ctx context.Context, filter leave.LeaveApplicationFilter) (leave.ListLeaveApplicationResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveApplicationResponse{}, err
	}

	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return leave.ListLeaveApplicationResponse{}, err
	}

	// Employees only ever see their own applications
	if !user.HasPermission(p.Role, user.PermissionLeaveViewAll) {
		if p.EmployeeID == "" {
			return leave.ListLeaveApplicationResponse{}, auth.ErrNoEmployeeProfile
		}
		filter.EmployeeID = &p.EmployeeID
	}

	apps, total, err := l.LeaveApplicationRepository.List(ctx, p.CompanyID, filter)
	if err != nil {
		return leave.ListLeaveApplicationResponse{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	now := l.clock.Now()
	responses := make([]leave.LeaveApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, leave.NewLeaveApplicationResponse(app, now, l.gate.Location()))
	}

	return leave.ListLeaveApplicationResponse{
		TotalCount:   total,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   int(math.Ceil(float64(total) / float64(filter.Limit))),
		Applications: responses,
	}, nil
}

// GetApplication implements leave.LeaveService.
func (l *LeaveServiceImpl) GetApplication(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app, err := l.LeaveApplicationRepository.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	// Hide other employees' applications instead of reporting them as forbidden
	if !user.HasPermission(p.Role, user.PermissionLeaveViewAll) && app.EmployeeID != p.EmployeeID {
		return leave.LeaveApplicationResponse{}, leave.ErrLeaveApplicationNotFound
	}

	return leave.NewLeaveApplicationResponse(app, l.clock.Now(), l.gate.Location()), nil
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	return l.mutate(ctx, id, leave.ActionApprove, func(app *leave.LeaveApplication, p auth.Principal) error {
		now := l.clock.Now().UTC()
		app.Status = leave.StatusApproved
		app.ApprovedBy = &p.UserID
		app.ApprovedDate = &now
		return nil
	})
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, id string, req leave.RejectLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	return l.mutate(ctx, id, leave.ActionReject, func(app *leave.LeaveApplication, _ auth.Principal) error {
		app.Status = leave.StatusRejected
		app.RejectionReason = &req.Reason
		return nil
	})
}

// Modify implements leave.LeaveService.
func (l *LeaveServiceImpl) Modify(ctx context.Context, id string, req leave.ModifyLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	return l.mutate(ctx, id, leave.ActionModify, func(app *leave.LeaveApplication, p auth.Principal) error {
		from, to := req.Dates()
		now := l.clock.Now().UTC()

		app.FromDate = from
		app.ToDate = to
		app.TotalDays = leave.CountDays(from, to)
		if req.Reason != "" {
			app.Reason = req.Reason
		}
		app.ModifiedBy = &p.UserID
		app.ModifiedDate = &now

		// The new dates have to respect the same cutoff as the old ones
		return l.gate.Check(leave.ActionModify, p.Role, *app).Err()
	})
}

// Revoke implements leave.LeaveService.
func (l *LeaveServiceImpl) Revoke(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	return l.mutate(ctx, id, leave.ActionRevoke, func(app *leave.LeaveApplication, p auth.Principal) error {
		now := l.clock.Now().UTC()
		app.IsRevoked = true
		app.RevokedBy = &p.UserID
		app.RevokedAt = &now
		return nil
	})
}

// mutate loads the application, runs the gate for action and persists
// whatever apply changed, all inside one transaction.
func (l *LeaveServiceImpl) mutate(
	ctx context.Context,
	id string,
	action leave.Action,
	apply func(app *leave.LeaveApplication, p auth.Principal) error,
) (leave.LeaveApplicationResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	var updated leave.LeaveApplication
	err = l.tx.WithinTx(ctx, func(txCtx context.Context) error {
		app, err := l.LeaveApplicationRepository.GetByID(txCtx, id, p.CompanyID)
		if err != nil {
			return err
		}

		if err := l.gate.Check(action, p.Role, app).Err(); err != nil {
			return err
		}

		if err := apply(&app, p); err != nil {
			return err
		}

		if err := l.LeaveApplicationRepository.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		updated = app
		return nil
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	resp := leave.NewLeaveApplicationResponse(updated, l.clock.Now(), l.gate.Location())
	l.notify(ctx, updated, resp)
	slog.Info("leave application updated", "id", updated.ID, "action", action, "by", p.UserID)

	return resp, nil
}

// notify tells the applicant about the change. Lookup failures are logged only.
func (l *LeaveServiceImpl) notify(ctx context.Context, app leave.LeaveApplication, resp leave.LeaveApplicationResponse) {
	if l.events == nil {
		return
	}
	emp, err := l.EmployeeRepository.GetByID(ctx, app.EmployeeID, app.CompanyID)
	if err != nil {
		slog.Warn("failed to resolve applicant for leave event", "employee_id", app.EmployeeID, "error", err)
		return
	}
	if emp.UserID == nil {
		return
	}
	l.events.Publish(*emp.UserID, sse.Event{Event: sse.EventLeaveUpdated, Data: resp})
}
