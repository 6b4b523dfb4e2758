package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/fable-exporter/internal/audit"
	"github.com/mrlokans/fable-exporter/internal/database"
	"github.com/mrlokans/fable-exporter/internal/database/runs"
	"github.com/mrlokans/fable-exporter/internal/entities"
)

const defaultHistoryLimit = 10

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var historyDB string
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recently recorded export runs, or the lists of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("history-db") {
				cfg.HistoryDB = historyDB
			}
			if cfg.HistoryDB == "" {
				return errors.New("no run history configured: set EXPORT_HISTORY_DB or pass --history-db")
			}

			db, err := database.NewDatabase(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer db.Close()

			service := audit.NewService(runs.NewRepository(db.DB))
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := service.Run(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, renderRun(run))
				return nil
			}

			recent, err := service.RecentRuns(limit)
			if err != nil {
				return fmt.Errorf("failed to load run history: %w", err)
			}
			if len(recent) == 0 {
				fmt.Fprintln(out, "No export runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(recent))
			for _, run := range recent {
				rows = append(rows, []string{
					run.RunID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
					strconv.Itoa(len(run.Lists)),
					strconv.Itoa(run.Fetched),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
					runResult(run),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Run", "Started", "Duration", "Lists", "Fetched", "Skipped", "Failed", "Result"},
				rows, 3, 4, 5, 6,
			))

			if _, total, err := db.GetStats(); err == nil {
				fmt.Fprintf(out, "Showing %d of %d recorded runs.\n", len(recent), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite database recording every run")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of runs to show")

	return cmd
}

// runResult is "ok" only when every list finished cleanly.
func runResult(run entities.ExportRun) string {
	switch {
	case run.Error != "":
		return truncate(run.Error, 50)
	case run.Incomplete():
		return "incomplete"
	default:
		return "ok"
	}
}

func renderRun(run *entities.ExportRun) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Run %s started %s, %s\n", run.RunID,
		run.StartedAt.Local().Format("2006-01-02 15:04:05"), runResult(*run))

	rows := make([][]string, 0, len(run.Lists))
	for _, list := range run.Lists {
		rows = append(rows, []string{
			list.ListName,
			string(list.Status),
			strconv.Itoa(list.Fetched),
			strconv.Itoa(list.Skipped),
			strconv.Itoa(list.Failed),
			strconv.Itoa(list.Pages),
			truncate(list.Error, 60),
		})
	}
	builder.WriteString(renderTable(
		[]string{"List", "Status", "Fetched", "Skipped", "Failed", "Pages", "Error"},
		rows, 2, 3, 4, 5,
	))
	if run.ReviewsError != "" {
		fmt.Fprintf(&builder, "Reviews incomplete: %s\n", run.ReviewsError)
	}
	return builder.String()
}
