package hrisapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

const testToken = "token-123"

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

func newTestClient(t *testing.T, r http.Handler, c cache.Cache[string, string]) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+testToken {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
			return
		}
		r.ServeHTTP(w, req)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/", TokenSource: StaticToken(testToken), Cache: c})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURLAndToken(t *testing.T) {
	_, err := New(Config{TokenSource: StaticToken("x")})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestAttendanceGateway_CheckIn(t *testing.T) {
	checkIn := time.Date(2025, 3, 10, 2, 5, 0, 0, time.UTC)
	var got attendance.CheckInRequest

	r := chi.NewRouter()
	r.Post("/api/v1/attendance/check-in", func(w http.ResponseWriter, req *http.Request) {
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		writeData(w, http.StatusCreated, attendance.AttendanceDayResponse{
			ID:          "att-1",
			EmployeeID:  "emp-1",
			Date:        "2025-03-10",
			CheckInTime: &checkIn,
			Status:      "present",
		})
	})

	gw := newTestClient(t, r, nil).Attendance()
	day, err := gw.CheckIn(context.Background(), attendance.PunchCommand{
		EmployeeID: "emp-1",
		LocationID: "loc-1",
		Latitude:   22.5726,
		Longitude:  88.3639,
		AttemptID:  "attempt-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "att-1", day.ID)
	assert.Equal(t, attendance.StateCheckedIn, attendance.StateOf(&day))
	assert.Equal(t, "attempt-1", got.AttemptID)
	assert.Equal(t, 22.5726, got.Latitude)
}

func TestAttendanceGateway_Errors(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/attendance/check-in", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusConflict, CodeDuplicateAttempt, "attendance already being recorded")
	})
	r.Post("/api/v1/attendance/check-out", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnprocessableEntity, "OUT_OF_GEOFENCE", "Anda berada di luar radius kantor")
	})
	r.Get("/api/v1/attendance/today", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	gw := newTestClient(t, r, nil).Attendance()
	ctx := context.Background()

	_, err := gw.CheckIn(ctx, attendance.PunchCommand{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttempt)

	_, err = gw.CheckOut(ctx, attendance.PunchCommand{EmployeeID: "emp-1"})
	var apiErr *attendance.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Anda berada di luar radius kantor", apiErr.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "OUT_OF_GEOFENCE", apiErr.Code)

	_, err = gw.GetTodayStatus(ctx, "emp-1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestAttendanceGateway_TodayStatus(t *testing.T) {
	checkIn := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(-time.Hour)
	var reply attendance.TodayStatusResponse

	r := chi.NewRouter()
	r.Get("/api/v1/attendance/today", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, reply)
	})
	gw := newTestClient(t, r, nil).Attendance()
	ctx := context.Background()

	reply = attendance.TodayStatusResponse{Date: "2025-03-10", State: attendance.StateNotMarked, CanCheckIn: true}
	day, err := gw.GetTodayStatus(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, day)

	reply.Attendance = &attendance.AttendanceDayResponse{ID: "att-1", EmployeeID: "emp-1", Date: "2025-03-10", CheckInTime: &checkIn}
	day, err = gw.GetTodayStatus(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, checkIn, day.CheckInTime.UTC())

	_, err = gw.GetTodayStatus(ctx, "emp-2")
	assert.ErrorIs(t, err, attendance.ErrMalformedAttendance)

	reply.Attendance.CheckOutTime = &checkOut
	_, err = gw.GetTodayStatus(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrMalformedAttendance)
}

func TestAttendanceGateway_GetAssignedLocation(t *testing.T) {
	lat, lng := 22.5726, 88.3639
	r := chi.NewRouter()
	r.Get("/api/v1/employees/{id}/location", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "emp-none" {
			writeError(w, http.StatusNotFound, CodeNoLocationAssigned, "no work location is assigned to this employee")
			return
		}
		writeData(w, http.StatusOK, location.AssignedLocationResponse{
			ID:                  "loc-1",
			Name:                "Kolkata Office",
			Latitude:            &lat,
			Longitude:           &lng,
			AllowedRadiusMeters: 100,
			HasCoordinates:      true,
		})
	})
	gw := newTestClient(t, r, nil).Attendance()

	loc, err := gw.GetAssignedLocation(context.Background(), "emp-1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.True(t, loc.HasCoordinates())
	assert.Equal(t, 100.0, loc.AllowedRadiusMeters)

	loc, err = gw.GetAssignedLocation(context.Background(), "emp-none")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestLeaveGateway(t *testing.T) {
	from := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	var rejected leave.RejectLeaveRequest

	r := chi.NewRouter()
	r.Get("/api/v1/leave/applications/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "leave-1" {
			writeError(w, http.StatusNotFound, CodeNotFound, "Leave application not found")
			return
		}
		writeData(w, http.StatusOK, leave.LeaveApplicationResponse{
			ID: "leave-1", EmployeeID: "emp-1", FromDate: from, ToDate: from.AddDate(0, 0, 1), TotalDays: 2, Status: "approved",
		})
	})
	r.Post("/api/v1/leave/applications/{id}/reject", func(w http.ResponseWriter, req *http.Request) {
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&rejected))
		writeData(w, http.StatusOK, leave.LeaveApplicationResponse{
			ID: "leave-1", EmployeeID: "emp-1", FromDate: from, ToDate: from, Status: "rejected", RejectionReason: &rejected.Reason,
		})
	})
	r.Post("/api/v1/leave/applications/{id}/revoke", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusForbidden, "LEAVE_CUTOFF", "cannot revoke leave application: less than 12 hours remaining")
	})

	gw := newTestClient(t, r, nil).Leave()
	ctx := context.Background()

	app, err := gw.Get(ctx, "leave-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, app.Status)
	assert.Equal(t, from, app.FromDate.UTC())

	_, err = gw.Get(ctx, "leave-404")
	assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)

	app, err = gw.Reject(ctx, "leave-1", leave.RejectLeaveRequest{Reason: "busy season"})
	require.NoError(t, err)
	assert.Equal(t, "busy season", rejected.Reason)
	assert.Equal(t, leave.StatusRejected, app.Status)

	_, err = gw.Revoke(ctx, "leave-1")
	var apiErr *leave.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "cannot revoke leave application: less than 12 hours remaining", apiErr.Message)
	assert.ErrorIs(t, err, leave.ErrAPIFailure)
}

func TestClient_EmployeeIDIsCachedAndShared(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})

	r := chi.NewRouter()
	r.Get("/api/v1/employees/me", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		writeData(w, http.StatusOK, map[string]string{"id": "emp-1"})
	})

	clk := clock.NewManual(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	client := newTestClient(t, r, cache.NewLRU[string, string](4, time.Hour, clk))

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := client.EmployeeID(context.Background())
			assert.NoError(t, err)
			results[i] = id
		}(i)
	}
	// Let the goroutines pile up on the single in-flight lookup.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, "emp-1", id)
	}
	assert.Equal(t, int32(1), hits.Load())

	id, err := client.EmployeeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", id)
	assert.Equal(t, int32(1), hits.Load())

	clk.Advance(time.Hour)
	_, err = client.EmployeeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

// switchableToken hands out whichever access token the test sets last.
type switchableToken struct {
	mu    sync.Mutex
	value string
}

func (s *switchableToken) set(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

func (s *switchableToken) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &oauth2.Token{AccessToken: s.value, TokenType: "Bearer"}, nil
}

func TestClient_EmployeeIDFollowsToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		ids := map[string]string{"Bearer token-a": "emp-a", "Bearer token-b": "emp-b"}
		writeData(w, http.StatusOK, map[string]string{"id": ids[req.Header.Get("Authorization")]})
	}))
	defer srv.Close()

	tokens := &switchableToken{value: "token-a"}
	client, err := New(Config{BaseURL: srv.URL, TokenSource: tokens})
	require.NoError(t, err)

	id, err := client.EmployeeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-a", id)

	tokens.set("token-b")
	id, err = client.EmployeeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-b", id)
	assert.Equal(t, int32(2), hits.Load())

	tokens.set("token-a")
	id, err = client.EmployeeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-a", id)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token expired")
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, TokenSource: StaticToken("stale")})
	require.NoError(t, err)

	_, err = client.Attendance().GetTodayStatus(context.Background(), "emp-1")
	var apiErr *attendance.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "token expired", apiErr.Message)
}
