package leave

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionModify  Action = "modify"
	ActionRevoke  Action = "revoke"
)

// DefaultCutoff is the minimum lead time before a leave starts for it to be modified or revoked.
const DefaultCutoff = 12 * time.Hour

var actionRoles = map[Action][]user.Role{
	ActionApprove: {user.RoleAdmin, user.RoleManager},
	ActionReject:  {user.RoleAdmin, user.RoleManager},
	ActionModify:  {user.RoleAdmin, user.RoleManager},
	ActionRevoke:  {user.RoleAdmin},
}

// Decision is the outcome of a gate check.
type Decision struct {
	Action         Action
	Allowed        bool
	HoursRemaining float64
	Reason         string
	cause          error
}

// Err is nil for an allowed decision and a *DenialError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DenialError{Action: d.Action, Reason: d.Reason, HoursRemaining: d.HoursRemaining, cause: d.cause}
}

// PermissionGate decides whether an approver may act on a leave application.
type PermissionGate struct {
	clock    clock.Clock
	cutoff   time.Duration
	location *time.Location
}

// NewPermissionGate builds a gate. A zero cutoff means DefaultCutoff and a nil
// location means date-only leave starts are read as UTC midnight.
func NewPermissionGate(clk clock.Clock, cutoff time.Duration, loc *time.Location) *PermissionGate {
	if clk == nil {
		clk = clock.Real()
	}
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PermissionGate{clock: clk, cutoff: cutoff, location: loc}
}

func (g *PermissionGate) Location() *time.Location {
	return g.location
}

// HoursUntilStart is the time left before the leave starts, in hours. It is negative once started.
func (g *PermissionGate) HoursUntilStart(app LeaveApplication) float64 {
	return app.StartsAt(g.location).Sub(g.clock.Now()).Hours()
}

// Check evaluates action for an actor holding role. The clock is sampled once.
func (g *PermissionGate) Check(action Action, role user.Role, app LeaveApplication) Decision {
	now := g.clock.Now()
	remaining := app.StartsAt(g.location).Sub(now)
	d := Decision{Action: action, HoursRemaining: remaining.Hours()}

	roles, known := actionRoles[action]
	if !known {
		return d.deny(ErrInvalidAction, fmt.Sprintf("unknown action %q", action))
	}
	if !roleIn(role, roles) {
		return d.deny(ErrPermissionDenied, fmt.Sprintf("role %q may not %s leave applications", role, action))
	}

	switch action {
	case ActionApprove, ActionReject:
		if app.IsRevoked {
			return d.deny(ErrLeaveRevoked, "the application has been revoked")
		}
		if app.Status != StatusPending {
			return d.deny(ErrLeaveNotPending, fmt.Sprintf("the application is already %s", app.Status))
		}
	case ActionModify, ActionRevoke:
		if app.IsRevoked {
			return d.deny(ErrLeaveRevoked, "the application has been revoked")
		}
		if app.Status != StatusApproved {
			return d.deny(ErrLeaveNotApproved, fmt.Sprintf("the application is %s, not approved", app.Status))
		}
		if remaining < g.cutoff {
			return d.deny(ErrWithinCutoffWindow, fmt.Sprintf(
				"less than %s remaining before the leave starts (%.1f hours left)",
				formatHours(g.cutoff), math.Floor(d.HoursRemaining*10)/10))
		}
		d.Allowed = true
		d.Reason = fmt.Sprintf("%.1f hours remaining before the leave starts", d.HoursRemaining)
		return d
	}

	d.Allowed = true
	return d
}

func (d Decision) deny(cause error, reason string) Decision {
	d.Allowed = false
	d.Reason = reason
	d.cause = cause
	return d
}

func roleIn(role user.Role, roles []user.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%g hours", d.Hours())
}
