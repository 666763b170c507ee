package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

type fakeLeaveGateway struct {
	app       leave.LeaveApplication
	getErr    error
	actionErr error
	calls     []string
}

func (g *fakeLeaveGateway) Get(_ context.Context, id string) (leave.LeaveApplication, error) {
	if g.getErr != nil {
		return leave.LeaveApplication{}, g.getErr
	}
	if id != g.app.ID {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return g.app, nil
}

func (g *fakeLeaveGateway) act(name string, change func(*leave.LeaveApplication)) (leave.LeaveApplication, error) {
	g.calls = append(g.calls, name)
	if g.actionErr != nil {
		return leave.LeaveApplication{}, g.actionErr
	}
	app := g.app
	change(&app)
	return app, nil
}

func (g *fakeLeaveGateway) Approve(_ context.Context, _ string) (leave.LeaveApplication, error) {
	return g.act("approve", func(a *leave.LeaveApplication) { a.Status = leave.StatusApproved })
}

func (g *fakeLeaveGateway) Reject(_ context.Context, _ string, req leave.RejectLeaveRequest) (leave.LeaveApplication, error) {
	return g.act("reject", func(a *leave.LeaveApplication) {
		a.Status = leave.StatusRejected
		a.RejectionReason = &req.Reason
	})
}

func (g *fakeLeaveGateway) Modify(_ context.Context, _ string, req leave.ModifyLeaveRequest) (leave.LeaveApplication, error) {
	return g.act("modify", func(a *leave.LeaveApplication) {
		a.FromDate, a.ToDate = req.Dates()
	})
}

func (g *fakeLeaveGateway) Revoke(_ context.Context, _ string) (leave.LeaveApplication, error) {
	return g.act("revoke", func(a *leave.LeaveApplication) { a.IsRevoked = true })
}

func newApproverFixture(status leave.ApplicationStatus) (*fakeLeaveGateway, *clock.Manual, *Approver) {
	clk := clock.NewManual(time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC))
	gw := &fakeLeaveGateway{app: leave.LeaveApplication{
		ID:         "leave-1",
		EmployeeID: "emp-1",
		FromDate:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		TotalDays:  2,
		Status:     status,
	}}
	return gw, clk, NewApprover(gw, leave.NewPermissionGate(clk, 0, nil))
}

var (
	admin   = Actor{UserID: "admin-1", Role: user.RoleAdmin}
	manager = Actor{UserID: "mgr-1", Role: user.RoleManager}
	staff   = Actor{UserID: "user-1", Role: user.RoleEmployee}
)

func TestApprover_RevokeAllowedAtCutoff(t *testing.T) {
	gw, _, a := newApproverFixture(leave.StatusApproved)

	app, err := a.Revoke(context.Background(), "leave-1", admin)
	require.NoError(t, err)
	assert.True(t, app.IsRevoked)
	assert.Equal(t, []string{"revoke"}, gw.calls)
}

func TestApprover_DeniedWithoutCallingService(t *testing.T) {
	tests := []struct {
		name    string
		status  leave.ApplicationStatus
		advance time.Duration
		run     func(a *Approver) error
		wantErr error
	}{
		{
			name:    "revoke one second inside cutoff",
			status:  leave.StatusApproved,
			advance: time.Second,
			run: func(a *Approver) error {
				_, err := a.Revoke(context.Background(), "leave-1", admin)
				return err
			},
			wantErr: leave.ErrWithinCutoffWindow,
		},
		{
			name:    "modify one second inside cutoff",
			status:  leave.StatusApproved,
			advance: time.Second,
			run: func(a *Approver) error {
				_, err := a.Modify(context.Background(), "leave-1", manager, leave.ModifyLeaveRequest{FromDate: "2025-03-20", ToDate: "2025-03-21"})
				return err
			},
			wantErr: leave.ErrWithinCutoffWindow,
		},
		{
			name:   "manager revoke",
			status: leave.StatusApproved,
			run: func(a *Approver) error {
				_, err := a.Revoke(context.Background(), "leave-1", manager)
				return err
			},
			wantErr: leave.ErrPermissionDenied,
		},
		{
			name:   "employee approve",
			status: leave.StatusPending,
			run: func(a *Approver) error {
				_, err := a.Approve(context.Background(), "leave-1", staff)
				return err
			},
			wantErr: leave.ErrPermissionDenied,
		},
		{
			name:   "reject approved application",
			status: leave.StatusApproved,
			run: func(a *Approver) error {
				_, err := a.Reject(context.Background(), "leave-1", manager, leave.RejectLeaveRequest{Reason: "no"})
				return err
			},
			wantErr: leave.ErrLeaveNotPending,
		},
		{
			name:   "revoke pending application",
			status: leave.StatusPending,
			run: func(a *Approver) error {
				_, err := a.Revoke(context.Background(), "leave-1", admin)
				return err
			},
			wantErr: leave.ErrLeaveNotApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, clk, a := newApproverFixture(tt.status)
			clk.Advance(tt.advance)

			err := tt.run(a)
			assert.ErrorIs(t, err, tt.wantErr)
			var denial *leave.DenialError
			assert.ErrorAs(t, err, &denial)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestApprover_Check(t *testing.T) {
	_, clk, a := newApproverFixture(leave.StatusApproved)
	clk.Advance(3 * time.Hour)

	app, d, err := a.Check(context.Background(), "leave-1", leave.ActionModify, admin)
	require.NoError(t, err)
	assert.Equal(t, "leave-1", app.ID)
	assert.False(t, d.Allowed)
	assert.Equal(t, 9.0, d.HoursRemaining)
	assert.Contains(t, d.Reason, "9.0 hours left")
}

func TestApprover_ServiceErrors(t *testing.T) {
	t.Run("typed api error is kept", func(t *testing.T) {
		gw, _, a := newApproverFixture(leave.StatusPending)
		apiErr := &leave.APIError{StatusCode: 500, Message: "database unavailable"}
		gw.actionErr = apiErr

		_, err := a.Approve(context.Background(), "leave-1", manager)
		var got *leave.APIError
		require.ErrorAs(t, err, &got)
		assert.Same(t, apiErr, got)
	})

	t.Run("untyped error becomes api error with the same message", func(t *testing.T) {
		gw, _, a := newApproverFixture(leave.StatusPending)
		gw.actionErr = errors.New("connection reset by peer")

		_, err := a.Approve(context.Background(), "leave-1", manager)
		require.ErrorIs(t, err, leave.ErrAPIFailure)
		var got *leave.APIError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, "connection reset by peer", got.Message)
	})

	t.Run("unknown application", func(t *testing.T) {
		gw, _, a := newApproverFixture(leave.StatusPending)

		_, err := a.Approve(context.Background(), "leave-404", manager)
		assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)
		assert.Empty(t, gw.calls)
	})

	t.Run("invalid reject request", func(t *testing.T) {
		gw, _, a := newApproverFixture(leave.StatusPending)

		_, err := a.Reject(context.Background(), "leave-1", manager, leave.RejectLeaveRequest{})
		assert.Error(t, err)
		assert.Empty(t, gw.calls)
	})
}
