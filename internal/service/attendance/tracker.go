package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// TrackerConfig wires a Tracker to its collaborators.
type TrackerConfig struct {
	EmployeeID      string
	Gateway         attendance.Gateway
	Positions       location.PositionProvider
	Clock           clock.Clock
	PositionOptions location.PositionOptions
}

// Tracker drives one employee's attendance for today from the client side.
// It keeps the last server snapshot and lets at most one check-in or
// check-out attempt run at a time. The snapshot only changes when the
// server confirms a transition or on Load.
type Tracker struct {
	employeeID string
	gateway    attendance.Gateway
	positions  location.PositionProvider
	clock      clock.Clock
	posOpts    location.PositionOptions

	mu       sync.Mutex
	loaded   bool
	day      *attendance.AttendanceDay
	assigned *location.AssignedLocation
	version  uint64
	attempt  string // id of the attempt in flight, empty when idle
}

func NewTracker(cfg TrackerConfig) *Tracker {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	opts := cfg.PositionOptions
	if opts == (location.PositionOptions{}) {
		opts = location.DefaultPositionOptions()
	}
	return &Tracker{
		employeeID: cfg.EmployeeID,
		gateway:    cfg.Gateway,
		positions:  location.WithTimeout(cfg.Positions),
		clock:      clk,
		posOpts:    opts,
	}
}

// Snapshot is a copy of what the tracker currently believes.
type Snapshot struct {
	State    attendance.State
	Day      *attendance.AttendanceDay
	Location *location.AssignedLocation
	InFlight bool
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		State:    attendance.StateOf(t.day),
		InFlight: t.attempt != "",
	}
	if t.day != nil {
		day := *t.day
		s.Day = &day
	}
	if t.assigned != nil {
		loc := *t.assigned
		s.Location = &loc
	}
	return s
}

func (t *Tracker) State() attendance.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return attendance.StateOf(t.day)
}

// CheckInTime returns today's check-in instant if there is one.
func (t *Tracker) CheckInTime() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.day == nil || t.day.CheckInTime == nil {
		return time.Time{}, false
	}
	return *t.day.CheckInTime, true
}

// Load refreshes today's record and the assigned location from the server.
// A successful Load supersedes any attempt still in flight. If a transition
// landed while Load was running, the newer snapshot is kept.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	startVersion := t.version
	t.mu.Unlock()

	var (
		day      *attendance.AttendanceDay
		assigned *location.AssignedLocation
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := t.gateway.GetTodayStatus(gCtx, t.employeeID)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if d != nil {
			if err := d.Validate(); err != nil {
				return err
			}
		}
		day = d
		return nil
	})

	g.Go(func() error {
		loc, err := t.gateway.GetAssignedLocation(gCtx, t.employeeID)
		if err != nil {
			return fmt.Errorf("failed to get assigned location: %w", err)
		}
		assigned = loc
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.version != startVersion {
		return nil
	}
	t.day = day
	t.assigned = assigned
	t.loaded = true
	t.version++
	t.attempt = ""
	return nil
}

// Abandon supersedes the attempt in flight, if any. Its eventual result is
// discarded and a new attempt may start immediately.
func (t *Tracker) Abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempt = ""
}

// CheckIn captures a fresh position, validates it against the assigned
// location and asks the server to record the check-in.
func (t *Tracker) CheckIn(ctx context.Context, remarks string) (attendance.AttendanceDay, error) {
	return t.punch(ctx, attendance.ActionCheckIn, remarks)
}

// CheckOut re-validates the position exactly like CheckIn before closing the day.
func (t *Tracker) CheckOut(ctx context.Context, remarks string) (attendance.AttendanceDay, error) {
	return t.punch(ctx, attendance.ActionCheckOut, remarks)
}

func (t *Tracker) punch(ctx context.Context, action attendance.Action, remarks string) (attendance.AttendanceDay, error) {
	if !t.isLoaded() {
		if err := t.Load(ctx); err != nil {
			return attendance.AttendanceDay{}, err
		}
	}

	id, assigned, err := t.begin(action)
	if err != nil {
		return attendance.AttendanceDay{}, err
	}

	pos, err := t.positions.CurrentPosition(ctx, t.posOpts)
	if err != nil {
		t.release(id)
		return attendance.AttendanceDay{}, err
	}

	if err := t.checkFresh(pos); err != nil {
		t.release(id)
		return attendance.AttendanceDay{}, err
	}

	if _, err := location.Require(&assigned, pos); err != nil {
		t.release(id)
		return attendance.AttendanceDay{}, err
	}

	if !t.current(id) {
		return attendance.AttendanceDay{}, attendance.ErrAttemptSuperseded
	}

	cmd := attendance.PunchCommand{
		EmployeeID:     t.employeeID,
		LocationID:     assigned.ID,
		Latitude:       pos.Latitude,
		Longitude:      pos.Longitude,
		AccuracyMeters: pos.AccuracyMeters,
		Remarks:        remarks,
		AttemptID:      id,
	}

	var day attendance.AttendanceDay
	if action == attendance.ActionCheckIn {
		day, err = t.gateway.CheckIn(ctx, cmd)
	} else {
		day, err = t.gateway.CheckOut(ctx, cmd)
	}

	return t.finish(id, action, day, err)
}

// checkFresh rejects a fix older than PositionOptions.MaximumAge. A zero
// MaximumAge leaves freshness to the provider.
func (t *Tracker) checkFresh(pos location.DevicePosition) error {
	if t.posOpts.MaximumAge <= 0 || pos.CapturedAt.IsZero() {
		return nil
	}
	if age := t.clock.Now().Sub(pos.CapturedAt); age > t.posOpts.MaximumAge {
		return fmt.Errorf("%w: position is %s old", location.ErrGeoPositionUnavailable, age.Round(time.Second))
	}
	return nil
}

func (t *Tracker) isLoaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// begin checks the transition and claims the attempt slot.
func (t *Tracker) begin(action attendance.Action) (string, location.AssignedLocation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attempt != "" {
		return "", location.AssignedLocation{}, attendance.ErrDuplicateAttempt
	}
	if err := attendance.CanTransition(attendance.StateOf(t.day), action); err != nil {
		return "", location.AssignedLocation{}, err
	}
	if t.assigned == nil {
		return "", location.AssignedLocation{}, location.ErrNoLocationAssigned
	}
	if !t.assigned.HasCoordinates() {
		return "", location.AssignedLocation{}, attendance.ErrLocationSetupRequired
	}

	t.attempt = uuid.NewString()
	return t.attempt, *t.assigned, nil
}

func (t *Tracker) current(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempt == id
}

func (t *Tracker) release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attempt == id {
		t.attempt = ""
	}
}

// finish applies a server reply if the attempt is still the current one.
func (t *Tracker) finish(id string, action attendance.Action, day attendance.AttendanceDay, callErr error) (attendance.AttendanceDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attempt != id {
		return attendance.AttendanceDay{}, attendance.ErrAttemptSuperseded
	}
	t.attempt = ""

	if callErr != nil {
		return attendance.AttendanceDay{}, gatewayError(callErr)
	}

	want := attendance.StateCheckedIn
	if action == attendance.ActionCheckOut {
		want = attendance.StateCheckedOut
	}
	if err := day.Validate(); err != nil {
		return attendance.AttendanceDay{}, err
	}
	if got := attendance.StateOf(&day); got != want {
		return attendance.AttendanceDay{}, fmt.Errorf("%w: server returned %s after %s", attendance.ErrMalformedAttendance, got, action)
	}

	t.day = &day
	t.version++
	return day, nil
}

// gatewayError keeps typed failures and turns anything else into an
// APIError carrying the collaborator's message unchanged.
func gatewayError(err error) error {
	var apiErr *attendance.APIError
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, attendance.ErrDuplicateAttempt),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &attendance.APIError{Message: err.Error()}
}
