package hrisapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
)

// AttendanceGateway implements attendance.Gateway against the API.
type AttendanceGateway struct {
	c *Client
}

var _ attendance.Gateway = (*AttendanceGateway)(nil)

func (c *Client) Attendance() *AttendanceGateway {
	return &AttendanceGateway{c: c}
}

func (g *AttendanceGateway) GetTodayStatus(ctx context.Context, employeeID string) (*attendance.AttendanceDay, error) {
	var status attendance.TodayStatusResponse
	if err := g.c.do(ctx, http.MethodGet, "/api/v1/attendance/today", nil, &status); err != nil {
		return nil, attendanceError(err)
	}
	if status.Attendance == nil {
		return nil, nil
	}

	day, err := status.Attendance.ToEntity()
	if err != nil {
		return nil, err
	}
	if day.EmployeeID != employeeID {
		return nil, fmt.Errorf("%w: record belongs to employee %s", attendance.ErrMalformedAttendance, day.EmployeeID)
	}
	return &day, nil
}

func (g *AttendanceGateway) CheckIn(ctx context.Context, cmd attendance.PunchCommand) (attendance.AttendanceDay, error) {
	return g.punch(ctx, "/api/v1/attendance/check-in", cmd)
}

func (g *AttendanceGateway) CheckOut(ctx context.Context, cmd attendance.PunchCommand) (attendance.AttendanceDay, error) {
	return g.punch(ctx, "/api/v1/attendance/check-out", cmd)
}

func (g *AttendanceGateway) punch(ctx context.Context, path string, cmd attendance.PunchCommand) (attendance.AttendanceDay, error) {
	var resp attendance.AttendanceDayResponse
	if err := g.c.do(ctx, http.MethodPost, path, attendance.NewPunchRequest(cmd), &resp); err != nil {
		return attendance.AttendanceDay{}, attendanceError(err)
	}
	return resp.ToEntity()
}

func (g *AttendanceGateway) GetAssignedLocation(ctx context.Context, employeeID string) (*location.AssignedLocation, error) {
	var resp location.AssignedLocationResponse
	path := "/api/v1/employees/" + url.PathEscape(employeeID) + "/location"
	if err := g.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == CodeNoLocationAssigned {
			return nil, nil
		}
		return nil, attendanceError(err)
	}

	loc, err := resp.ToEntity()
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func attendanceError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	if se.StatusCode == http.StatusConflict && se.Code == CodeDuplicateAttempt {
		return fmt.Errorf("%w: %s", attendance.ErrDuplicateAttempt, se.Message)
	}
	return &attendance.APIError{StatusCode: se.StatusCode, Code: se.Code, Message: se.Message}
}
