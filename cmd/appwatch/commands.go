package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/stats"
)

// withClient runs fn against a client built from the loaded config.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *api.Client) error) error {
	logger, closer, err := a.fileLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, api.NewClient(a.cfg.ServerURL, a.cfg.RequestTimeout, logger))
}

func newStartCmd(a *app) *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start periodic checks on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.Monitor.DefaultInterval
			}
			if interval < a.cfg.Monitor.MinInterval {
				return fmt.Errorf("check interval must be at least %d seconds", a.cfg.Monitor.MinInterval)
			}
			return a.withClient(cmd, func(ctx context.Context, c *api.Client) error {
				if err := c.Start(ctx, interval); err != nil {
					return fmt.Errorf("start monitoring: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Monitoring started (every %ds)\n", interval)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "seconds between checks")
	return cmd
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop periodic checks on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *api.Client) error {
				if err := c.Stop(ctx); err != nil {
					return fmt.Errorf("stop monitoring: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Monitoring stopped")
				return nil
			})
		},
	}
}

func newCheckNowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-now",
		Short: "Run a single check immediately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *api.Client) error {
				result, err := c.CheckNow(ctx)
				if err != nil {
					return fmt.Errorf("check now: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Check completed: %s\n", result)
				return nil
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session status and check statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *api.Client) error {
				var (
					st      api.SessionStatus
					history []api.HistoryEntry
				)
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() (err error) {
					st, err = c.Status(gctx)
					return err
				})
				g.Go(func() (err error) {
					history, err = c.History(gctx)
					return err
				})
				if err := g.Wait(); err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}

				printStatus(cmd, st, stats.Aggregate(history, a.cfg.UI.HistoryRows))
				return nil
			})
		},
	}
}

func printStatus(cmd *cobra.Command, st api.SessionStatus, sum stats.Summary) {
	state := "stopped"
	if st.MonitoringActive {
		state = fmt.Sprintf("monitoring (every %ds)", st.CheckInterval)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", state)

	last := "-"
	if st.LastCheckTime != nil && !st.LastCheckTime.IsZero() {
		last = st.LastCheckTime.Format(time.DateTime)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Last check: %s\n", last)
	if st.LastCheckStatus != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Result: %s\n", st.LastCheckStatus)
	}
	if st.CaptchaImage != nil && *st.CaptchaImage != "" {
		text := "-"
		if st.CaptchaText != nil && *st.CaptchaText != "" {
			text = *st.CaptchaText
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Captcha: %s\n", text)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Checks: %d total, %d successful, %d failed, %d found\n",
		sum.Total, sum.Successful, sum.Failed, sum.Found)
	if sum.Empty {
		fmt.Fprintln(cmd.OutOrStdout(), "No checks yet.")
		return
	}
	for _, r := range sum.Rows {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-11s  %s\n", r.Timestamp.Format(time.DateTime), r.Outcome.Badge(), r.Label)
	}
}
