package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/fable-exporter/internal/fable"
)

func newListsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show the book lists of the configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			service, err := newService(cfg)
			if err != nil {
				return err
			}
			lists, err := fable.Retry(cmd.Context(), service.RetryPolicy(), service.FetchLists)
			if err != nil {
				return fmt.Errorf("fetch book lists: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(lists) == 0 {
				fmt.Fprintln(out, "No book lists found.")
				return nil
			}

			rows := make([][]string, 0, len(lists))
			for _, list := range lists {
				count := "-"
				if n, ok := list.Count.Get(); ok {
					count = strconv.Itoa(n)
				}
				rows = append(rows, []string{list.ID, list.Name, count})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Name", "Books"}, rows, 2))
			return nil
		},
	}
}
