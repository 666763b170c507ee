package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
)

type positionFlags struct {
	latitude  float64
	longitude float64
	accuracy  float64
	remarks   string
}

func (p *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.latitude, "lat", 0, "Current latitude in decimal degrees")
	cmd.Flags().Float64Var(&p.longitude, "lng", 0, "Current longitude in decimal degrees")
	cmd.Flags().Float64Var(&p.accuracy, "accuracy", 0, "Reported accuracy of the fix in meters")
	cmd.Flags().StringVar(&p.remarks, "remarks", "", "Optional note stored with the record")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
}

func (a *app) tracker(ctx context.Context, positions location.PositionProvider) (*attendanceService.Tracker, error) {
	employeeID, err := a.client.EmployeeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employee: %w", err)
	}
	opts := location.DefaultPositionOptions()
	opts.Timeout = a.cfg.GeoTimeout
	return attendanceService.NewTracker(attendanceService.TrackerConfig{
		EmployeeID:      employeeID,
		Gateway:         a.client.Attendance(),
		Positions:       positions,
		Clock:           clock.Real(),
		PositionOptions: opts,
	}), nil
}

func (a *app) attendanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Check in, check out and follow today's attendance",
	}
	cmd.AddCommand(a.statusCommand(), a.punchCommand(attendance.ActionCheckIn), a.punchCommand(attendance.ActionCheckOut), a.timerCommand())
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's attendance state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := t.Load(cmd.Context()); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), t.Snapshot())
			return nil
		},
	}
}

func (a *app) punchCommand(action attendance.Action) *cobra.Command {
	var pos positionFlags
	cmd := &cobra.Command{
		Use:   string(action),
		Short: "Record a " + string(action) + " at the given position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := location.Fixed{Latitude: pos.latitude, Longitude: pos.longitude, AccuracyMeters: pos.accuracy}
			t, err := a.tracker(cmd.Context(), provider)
			if err != nil {
				return err
			}

			var day attendance.AttendanceDay
			if action == attendance.ActionCheckIn {
				day, err = t.CheckIn(cmd.Context(), pos.remarks)
			} else {
				day, err = t.CheckOut(cmd.Context(), pos.remarks)
			}
			if err != nil {
				return err
			}

			printPunch(cmd.OutOrStdout(), day)
			return nil
		},
	}
	pos.register(cmd)
	return cmd
}

func printPunch(out io.Writer, day attendance.AttendanceDay) {
	if day.CheckOutTime == nil {
		if day.CheckInTime == nil {
			return
		}
		fmt.Fprintf(out, "Checked in at %s", day.CheckInTime.Local().Format("15:04"))
		if day.IsLate {
			fmt.Fprintf(out, " (%d minutes late)", day.LateMinutes)
		}
		fmt.Fprintln(out)
		return
	}
	fmt.Fprintf(out, "Checked out at %s", day.CheckOutTime.Local().Format("15:04"))
	if day.WorkingHours != nil {
		fmt.Fprintf(out, ", worked %.2f hours", *day.WorkingHours)
	}
	fmt.Fprintln(out)
}

func (a *app) timerCommand() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Show the running work time since today's check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := t.Load(cmd.Context()); err != nil {
				return err
			}

			snap := t.Snapshot()
			if snap.State != attendance.StateCheckedIn {
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			}
			checkIn, _ := t.CheckInTime()
			return runTimer(cmd.Context(), cmd.OutOrStdout(), attendanceService.NewLiveTimer(clock.Real(), a.cfg.TimerInterval), checkIn, once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Print a single reading and exit")
	return cmd
}

func runTimer(ctx context.Context, out io.Writer, timer *attendanceService.LiveTimer, checkIn time.Time, once bool) error {
	if once {
		fmt.Fprintln(out, timer.Estimate(checkIn).Display)
		return nil
	}
	err := timer.Run(ctx, checkIn, func(r attendanceService.TimerReading) {
		fmt.Fprintf(out, "\r%s", r.Display)
	})
	fmt.Fprintln(out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printSnapshot(out io.Writer, s attendanceService.Snapshot) {
	fmt.Fprintf(out, "State: %s\n", s.State)
	if s.Location != nil {
		fmt.Fprintf(out, "Location: %s (radius %.0fm)\n", s.Location.Name, s.Location.AllowedRadiusMeters)
	} else {
		fmt.Fprintln(out, "Location: none assigned")
	}
	if s.Day == nil {
		return
	}
	if s.Day.CheckInTime != nil {
		fmt.Fprintf(out, "Checked in: %s\n", s.Day.CheckInTime.Local().Format(time.DateTime))
	}
	if s.Day.CheckOutTime != nil {
		fmt.Fprintf(out, "Checked out: %s\n", s.Day.CheckOutTime.Local().Format(time.DateTime))
	}
	if s.Day.WorkingHours != nil {
		fmt.Fprintf(out, "Working hours: %.2f\n", *s.Day.WorkingHours)
	}
}
