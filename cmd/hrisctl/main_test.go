package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
)

func TestActorFromToken(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("server-secret"), nil)
	_, token, err := ja.Encode(map[string]interface{}{
		"user_id": "user-1",
		"role":    "manager",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	actor, err := actorFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, user.RoleManager, actor.Role)

	_, token, err = ja.Encode(map[string]interface{}{"user_id": "user-1", "role": "owner"})
	require.NoError(t, err)
	_, err = actorFromToken(token)
	assert.Error(t, err)

	_, err = actorFromToken("not-a-token")
	assert.Error(t, err)
}

func TestRunTimer_Once(t *testing.T) {
	checkIn := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	timer := attendanceService.NewLiveTimer(clock.NewManual(checkIn.Add(2*time.Hour+5*time.Minute)), time.Minute)

	var out bytes.Buffer
	require.NoError(t, runTimer(context.Background(), &out, timer, checkIn, true))
	assert.Equal(t, "2h 05m\n", out.String())
}

func TestRootCommand_RequiresToken(t *testing.T) {
	t.Setenv("HRIS_API_TOKEN", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"attendance", "status"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HRIS_API_TOKEN")
}

func TestPrintPunch(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	out := in.Add(8 * time.Hour)
	hours := 8.0

	var buf bytes.Buffer
	printPunch(&buf, attendance.AttendanceDay{CheckInTime: &in, IsLate: true, LateMinutes: 5})
	assert.Equal(t, "Checked in at 09:00 (5 minutes late)\n", buf.String())

	buf.Reset()
	printPunch(&buf, attendance.AttendanceDay{CheckInTime: &in, CheckOutTime: &out, WorkingHours: &hours})
	assert.Equal(t, "Checked out at 17:00, worked 8.00 hours\n", buf.String())

	buf.Reset()
	assert.NotPanics(t, func() {
		printPunch(&buf, attendance.AttendanceDay{CheckInTime: &in, CheckOutTime: &out})
	})
	assert.Equal(t, "Checked out at 17:00\n", buf.String())
}
