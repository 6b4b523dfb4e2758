package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/fable-exporter/internal/scheduler"
)

const defaultRunTimeout = 30 * time.Minute

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags
	var schedule string
	var runNow bool
	var runTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the export on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("schedule") {
				cfg.Schedule = schedule
			}
			export, err := prepareExport(ctx, cmd, &flags)
			if err != nil {
				return err
			}

			exportScheduler := scheduler.NewExportScheduler(cfg.Schedule, runTimeout, func(ctx context.Context) error {
				_, err := export.Run(ctx)
				return err
			})

			runCtx := cmd.Context()
			if err := exportScheduler.Start(runCtx); err != nil {
				return err
			}
			defer exportScheduler.Stop()

			out := cmd.OutOrStdout()
			if next := exportScheduler.GetNextRunTime(); next != nil {
				fmt.Fprintf(out, "Scheduled export '%s', next run at %s\n", cfg.Schedule, next.Format(time.RFC1123))
			}
			if runNow {
				exportScheduler.RunNow()
			}

			<-runCtx.Done()
			fmt.Fprintln(out, "Stopping scheduler...")
			if exportScheduler.IsExporting() {
				fmt.Fprintln(out, "Waiting for the running export to finish...")
			}
			exportScheduler.Stop()

			if at, lastErr := exportScheduler.LastRun(); !at.IsZero() {
				result := "ok"
				if lastErr != nil {
					result = lastErr.Error()
				}
				fmt.Fprintf(out, "Last run finished at %s: %s\n", at.Format(time.RFC1123), result)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression (5 fields), overrides EXPORT_SCHEDULE")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run one export immediately after starting")
	cmd.Flags().DurationVar(&runTimeout, "timeout", defaultRunTimeout, "Upper bound for a single run")

	return cmd
}
