package hrisapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

// LeaveGateway implements leave.Gateway against the API.
type LeaveGateway struct {
	c *Client
}

var _ leave.Gateway = (*LeaveGateway)(nil)

func (c *Client) Leave() *LeaveGateway {
	return &LeaveGateway{c: c}
}

func applicationPath(id string, action string) string {
	p := "/api/v1/leave/applications/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (g *LeaveGateway) Get(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return g.call(ctx, http.MethodGet, applicationPath(id, ""), nil)
}

func (g *LeaveGateway) Approve(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return g.call(ctx, http.MethodPost, applicationPath(id, string(leave.ActionApprove)), nil)
}

func (g *LeaveGateway) Reject(ctx context.Context, id string, req leave.RejectLeaveRequest) (leave.LeaveApplication, error) {
	return g.call(ctx, http.MethodPost, applicationPath(id, string(leave.ActionReject)), req)
}

func (g *LeaveGateway) Modify(ctx context.Context, id string, req leave.ModifyLeaveRequest) (leave.LeaveApplication, error) {
	return g.call(ctx, http.MethodPost, applicationPath(id, string(leave.ActionModify)), req)
}

func (g *LeaveGateway) Revoke(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return g.call(ctx, http.MethodPost, applicationPath(id, string(leave.ActionRevoke)), nil)
}

func (g *LeaveGateway) call(ctx context.Context, method, path string, body interface{}) (leave.LeaveApplication, error) {
	var resp leave.LeaveApplicationResponse
	if err := g.c.do(ctx, method, path, body, &resp); err != nil {
		return leave.LeaveApplication{}, leaveError(err)
	}
	return resp.ToEntity()
}

func leaveError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	if se.StatusCode == http.StatusNotFound && se.Code == CodeNotFound {
		return leave.ErrLeaveApplicationNotFound
	}
	return &leave.APIError{StatusCode: se.StatusCode, Code: se.Code, Message: se.Message}
}
