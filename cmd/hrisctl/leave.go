package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
)

func (a *app) leaveCommand() *cobra.Command {
	var timezone string
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Approve, reject, modify or revoke leave applications",
	}
	cmd.PersistentFlags().StringVar(&timezone, "timezone", "Asia/Jakarta", "Timezone date-only leave starts are read in")

	approver := func() (*leaveService.Approver, leaveService.Actor, *time.Location, error) {
		actor, err := a.actor()
		if err != nil {
			return nil, leaveService.Actor{}, nil, err
		}
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, leaveService.Actor{}, nil, fmt.Errorf("invalid timezone: %w", err)
		}
		gate := leave.NewPermissionGate(clock.Real(), leave.DefaultCutoff, loc)
		return leaveService.NewApprover(a.client.Leave(), gate), actor, loc, nil
	}

	check := &cobra.Command{
		Use:   "check <id> <approve|reject|modify|revoke>",
		Short: "Show whether an action is allowed without performing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, actor, _, err := approver()
			if err != nil {
				return err
			}
			_, d, err := ap.Check(cmd.Context(), args[0], leave.Action(args[1]), actor)
			if err != nil {
				return err
			}
			if d.Allowed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s allowed", d.Action)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s denied: %s", d.Action, d.Reason)
			}
			fmt.Fprintf(cmd.OutOrStdout(), " (%.1f hours until the leave starts)\n", d.HoursRemaining)
			return nil
		},
	}

	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, actor, loc, err := approver()
			if err != nil {
				return err
			}
			app, err := ap.Approve(cmd.Context(), args[0], actor)
			if err != nil {
				return err
			}
			printApplication(cmd.OutOrStdout(), app, loc)
			return nil
		},
	}

	var rejectReason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, actor, loc, err := approver()
			if err != nil {
				return err
			}
			app, err := ap.Reject(cmd.Context(), args[0], actor, leave.RejectLeaveRequest{Reason: rejectReason})
			if err != nil {
				return err
			}
			printApplication(cmd.OutOrStdout(), app, loc)
			return nil
		},
	}
	reject.Flags().StringVar(&rejectReason, "reason", "", "Why the application is rejected")
	_ = reject.MarkFlagRequired("reason")

	var modifyReq leave.ModifyLeaveRequest
	modify := &cobra.Command{
		Use:   "modify <id>",
		Short: "Change the dates of an approved application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, actor, loc, err := approver()
			if err != nil {
				return err
			}
			app, err := ap.Modify(cmd.Context(), args[0], actor, modifyReq)
			if err != nil {
				return err
			}
			printApplication(cmd.OutOrStdout(), app, loc)
			return nil
		},
	}
	modify.Flags().StringVar(&modifyReq.FromDate, "from", "", "New first day, YYYY-MM-DD")
	modify.Flags().StringVar(&modifyReq.ToDate, "to", "", "New last day, YYYY-MM-DD")
	modify.Flags().StringVar(&modifyReq.Reason, "reason", "", "Optional note about the change")
	_ = modify.MarkFlagRequired("from")
	_ = modify.MarkFlagRequired("to")

	revoke := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an approved application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, actor, loc, err := approver()
			if err != nil {
				return err
			}
			app, err := ap.Revoke(cmd.Context(), args[0], actor)
			if err != nil {
				return err
			}
			printApplication(cmd.OutOrStdout(), app, loc)
			return nil
		},
	}

	cmd.AddCommand(check, approve, reject, modify, revoke)
	return cmd
}

func printApplication(out io.Writer, app leave.LeaveApplication, loc *time.Location) {
	fmt.Fprintf(out, "%s  %s to %s  %d day(s)  %s\n",
		app.ID,
		app.FromDate.Format(time.DateOnly),
		app.ToDate.Format(time.DateOnly),
		app.TotalDays,
		app.DisplayStatus(time.Now(), loc),
	)
}
