package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sakura-events/sakura-backend/internal/dashboard"
	"github.com/sakura-events/sakura-backend/internal/dashboard/tui"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

func newTimerCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Track hours spent on a project",
	}
	cmd.AddCommand(
		newTimerStartCommand(e),
		newTimerStopCommand(e),
		newTimerStatusCommand(e),
		newTimerWatchCommand(e),
	)
	return cmd
}

func projectTitle(d *dashboard.Dashboard) string {
	if d.Selected != nil {
		return d.Selected.Title
	}
	if d.Running != nil {
		return d.Running.ProjectID
	}
	return ""
}

func newTimerStartCommand(e *env) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "start <project-id>",
		Short: "Start the timer on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if d.Running != nil {
				return fmt.Errorf("a timer is already running on %s", projectTitle(d))
			}
			if err := d.Select(args[0]); err != nil {
				return err
			}
			rt, err := d.Start(ctx)
			if err != nil {
				return err
			}

			e.printf("%s\n", color.GreenString("Timer started on %s at %s", projectTitle(d), rt.StartTimestamp.Local().Format(time.Kitchen)))
			if watch {
				return e.watch(d)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "show the running timer")
	return cmd
}

func newTimerStopCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer and log the hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if d.Running == nil {
				return fmt.Errorf("no timer is running")
			}
			title := projectTitle(d)
			res, err := d.Stop(ctx)
			if err != nil {
				return err
			}
			e.printStop(title, res)
			return nil
		},
	}
}

func newTimerStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if d.Running == nil {
				e.printf("No timer running\n")
				return nil
			}
			e.printf("%s %s (%s)\n", color.CyanString("Running:"), projectTitle(d), tui.FormatElapsed(d.Running.Elapsed(time.Now())))
			return nil
		},
	}
}

func newTimerWatchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the running timer; press s to stop, q to leave it running",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if d.Running == nil {
				return fmt.Errorf("no timer is running")
			}
			return e.watch(d)
		},
	}
}

// watch runs the timer view. Stopping from the view goes through the same
// path as 'timer stop'.
func (e *env) watch(d *dashboard.Dashboard) error {
	title := projectTitle(d)
	stop := func(ctx context.Context, end time.Time) (*timerdomain.StopResult, error) {
		return d.StopAt(ctx, end)
	}

	res, err := tui.Run(tui.New(*d.Running, title, clock.New(), stop))
	if err != nil {
		return err
	}
	if res == nil {
		e.printf("Timer still running. Resume with 'sakura timer watch'.\n")
		return nil
	}
	e.printStop(title, res)
	return nil
}

func (e *env) printStop(title string, res *timerdomain.StopResult) {
	e.printf("%s\n", color.GreenString("Logged %.2fh on %s", res.Duration, title))
	e.printf("Project total: %.2fh\n", res.ProjectTotalHours)
}
