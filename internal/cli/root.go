package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/fable-exporter/internal/config"
)

// NewRootCommand builds the fable-exporter command tree.
func NewRootCommand(version, commit string) *cobra.Command {
	var configFlag string
	var envFileFlag string

	ctx := newCommandContext(&configFlag, &envFileFlag)

	rootCmd := &cobra.Command{
		Use:           "fable-exporter",
		Short:         "Export your Fable library to CSV, JSON, Markdown or SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (any format viper reads)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", config.DefaultEnvFile, "Credentials file loaded into the environment")

	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newListsCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fable-exporter %s (commit %s)\n", version, commit)
		},
	})

	return rootCmd
}
