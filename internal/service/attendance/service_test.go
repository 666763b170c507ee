package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryAttendanceRepo struct {
	mu   sync.Mutex
	days map[string]attendance.AttendanceDay
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{days: make(map[string]attendance.AttendanceDay)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "/" + date.Format("2006-01-02")
}

func (r *memoryAttendanceRepo) Create(_ context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(day.EmployeeID, day.Date)
	if _, exists := r.days[key]; exists {
		return attendance.AttendanceDay{}, attendance.ErrDuplicateAttempt
	}
	day.ID = "att-" + key
	r.days[key] = day
	return day, nil
}

func (r *memoryAttendanceRepo) GetByID(_ context.Context, id string, _ string) (attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.days {
		if d.ID == id {
			return d, nil
		}
	}
	return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
}

func (r *memoryAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, _ string) (*attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.days[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memoryAttendanceRepo) CompleteCheckOut(_ context.Context, day attendance.AttendanceDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(day.EmployeeID, day.Date)
	if r.days[key].CheckOutTime != nil {
		return attendance.ErrAlreadyCheckedOut
	}
	r.days[key] = day
	return nil
}

func (r *memoryAttendanceRepo) GetMyAttendance(_ context.Context, employeeID string, _ attendance.MyAttendanceFilter, _ string) ([]attendance.AttendanceDay, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.AttendanceDay
	for _, d := range r.days {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryAttendanceRepo) HasRecordOnDate(_ context.Context, employeeID string, date time.Time, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.days[dayKey(employeeID, date)]
	return ok, nil
}

func (r *memoryAttendanceRepo) BulkCreateAbsences(_ context.Context, days []attendance.AttendanceDay) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range days {
		key := dayKey(d.EmployeeID, d.Date)
		if _, ok := r.days[key]; ok {
			continue
		}
		r.days[key] = d
		n++
	}
	return n, nil
}

type memoryLocationRepo struct {
	assigned map[string]location.AssignedLocation
}

func (r memoryLocationRepo) GetAssignedByEmployeeID(_ context.Context, employeeID string, _ string) (location.AssignedLocation, error) {
	loc, ok := r.assigned[employeeID]
	if !ok {
		return location.AssignedLocation{}, location.ErrNoLocationAssigned
	}
	return loc, nil
}

func (r memoryLocationRepo) GetByID(_ context.Context, id string, _ string) (location.AssignedLocation, error) {
	for _, loc := range r.assigned {
		if loc.ID == id {
			return loc, nil
		}
	}
	return location.AssignedLocation{}, location.ErrLocationNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(userID string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.UserID = userID
	p.events = append(p.events, event)
}

func employeeContext(t *testing.T, employeeID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":     "user-" + employeeID,
		"employee_id": employeeID,
		"company_id":  "co-1",
		"role":        "employee",
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type serviceFixture struct {
	clock  *clock.Manual
	repo   *memoryAttendanceRepo
	events *recordingPublisher
	svc    attendance.AttendanceService
}

func newServiceFixture() *serviceFixture {
	jakarta := time.FixedZone("WIB", 7*3600)
	clk := clock.NewManual(time.Date(2025, 3, 10, 9, 5, 0, 0, jakarta))
	repo := newMemoryAttendanceRepo()
	locs := memoryLocationRepo{assigned: map[string]location.AssignedLocation{"emp-1": *office()}}
	events := &recordingPublisher{}
	shifts := attendance.FixedShiftPolicy{Shift: attendance.Shift{
		Start:         9 * time.Hour,
		GracePeriod:   10 * time.Minute,
		RequiredHours: 8,
		Location:      jakarta,
	}}
	svc := NewAttendanceService(passthroughTx{}, repo, locs, shifts, clk, events)
	return &serviceFixture{clock: clk, repo: repo, events: events, svc: svc}
}

func punchAt(p geo.Point) attendance.CheckInRequest {
	return attendance.CheckInRequest{
		EmployeeID: "emp-1",
		LocationID: "loc-1",
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		AttemptID:  "attempt-1",
	}
}

func TestAttendanceService_CheckInOnTime(t *testing.T) {
	f := newServiceFixture()
	ctx := employeeContext(t, "emp-1")

	resp, err := f.svc.CheckIn(ctx, punchAt(geo.Offset(officePoint, 80, 0)))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, "present", resp.Status)
	assert.False(t, resp.IsLate)
	require.NotNil(t, resp.CheckInTime)
	assert.Equal(t, f.clock.Now().UTC(), *resp.CheckInTime)
	assert.Equal(t, 8.0, resp.RequiredHours)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, sse.EventAttendanceCheckedIn, f.events.events[0].Event)
	assert.Equal(t, "user-emp-1", f.events.events[0].UserID)

	status, err := f.svc.GetTodayStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedIn, status.State)
	assert.True(t, status.CanCheckOut)
}

func TestAttendanceService_CheckInLate(t *testing.T) {
	f := newServiceFixture()
	f.clock.Advance(20 * time.Minute) // 09:25 local

	resp, err := f.svc.CheckIn(employeeContext(t, "emp-1"), punchAt(officePoint))
	require.NoError(t, err)

	assert.Equal(t, "late", resp.Status)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 25, resp.LateMinutes)
}

func TestAttendanceService_CheckInRejected(t *testing.T) {
	tests := []struct {
		name string
		ctx  func(t *testing.T) context.Context
		req  func() attendance.CheckInRequest
		err  error
	}{
		{
			name: "outside geofence",
			ctx:  func(t *testing.T) context.Context { return employeeContext(t, "emp-1") },
			req:  func() attendance.CheckInRequest { return punchAt(geo.Offset(officePoint, 150, 0)) },
			err:  location.ErrOutOfGeofence,
		},
		{
			name: "someone else's record",
			ctx:  func(t *testing.T) context.Context { return employeeContext(t, "emp-2") },
			req:  func() attendance.CheckInRequest { return punchAt(officePoint) },
			err:  attendance.ErrEmployeeMismatch,
		},
		{
			name: "stale location id",
			ctx:  func(t *testing.T) context.Context { return employeeContext(t, "emp-1") },
			req: func() attendance.CheckInRequest {
				r := punchAt(officePoint)
				r.LocationID = "loc-old"
				return r
			},
			err: location.ErrLocationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			_, err := f.svc.CheckIn(tt.ctx(t), tt.req())
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, f.repo.days)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestAttendanceService_NoLocationAssigned(t *testing.T) {
	f := newServiceFixture()
	req := punchAt(officePoint)
	req.EmployeeID = "emp-3"

	_, err := f.svc.CheckIn(employeeContext(t, "emp-3"), req)
	assert.ErrorIs(t, err, location.ErrNoLocationAssigned)
}

func TestAttendanceService_CheckInTwice(t *testing.T) {
	f := newServiceFixture()
	ctx := employeeContext(t, "emp-1")

	_, err := f.svc.CheckIn(ctx, punchAt(officePoint))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, punchAt(officePoint))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckOut(t *testing.T) {
	f := newServiceFixture()
	ctx := employeeContext(t, "emp-1")

	_, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest(punchAt(officePoint)))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = f.svc.CheckIn(ctx, punchAt(officePoint))
	require.NoError(t, err)

	f.clock.Advance(7*time.Hour + 30*time.Minute)
	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest(punchAt(geo.Offset(officePoint, 0, 300))))
	assert.ErrorIs(t, err, location.ErrOutOfGeofence, "check-out re-validates the position")

	resp, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest(punchAt(officePoint)))
	require.NoError(t, err)
	require.NotNil(t, resp.WorkingHours)
	assert.Equal(t, 7.5, *resp.WorkingHours)
	assert.True(t, resp.IsEarlyLeave)
	assert.Equal(t, 30, resp.EarlyLeaveMinutes)

	_, err = f.svc.CheckOut(ctx, attendance.CheckOutRequest(punchAt(officePoint)))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, sse.EventAttendanceCheckedOut, f.events.events[1].Event)
}

func TestAttendanceService_GetMyAttendance(t *testing.T) {
	f := newServiceFixture()
	ctx := employeeContext(t, "emp-1")
	_, err := f.svc.CheckIn(ctx, punchAt(officePoint))
	require.NoError(t, err)

	list, err := f.svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 1, list.TotalPages)
	assert.Equal(t, "1-1 of 1", list.Showing)
	assert.Len(t, list.Attendances, 1)
}
