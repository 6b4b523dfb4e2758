package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/fable-exporter/internal/audit"
	"github.com/mrlokans/fable-exporter/internal/config"
	"github.com/mrlokans/fable-exporter/internal/database"
	"github.com/mrlokans/fable-exporter/internal/database/runs"
	"github.com/mrlokans/fable-exporter/internal/entities"
	"github.com/mrlokans/fable-exporter/internal/exporters"
	"github.com/mrlokans/fable-exporter/internal/fable"
	"github.com/mrlokans/fable-exporter/internal/importers"
	"github.com/mrlokans/fable-exporter/internal/utils"
)

// CombinedName is the base file name used when lists are not written separately.
const CombinedName = "fable_books"

// ErrIncompleteRun is returned after outputs were written for a run in which
// at least one list failed or was truncated.
var ErrIncompleteRun = errors.New("export incomplete: some lists failed or were truncated")

// exportFlags override configuration values for a single invocation.
type exportFlags struct {
	formats      string
	outputDir    string
	separate     bool
	lists        []string
	includeOwned bool
	concurrency  int
	auditDir     string
	historyDB    string
}

func (f *exportFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.formats, "format", "f", "", "Comma separated output formats: csv, json, md, sqlite")
	flags.StringVarP(&f.outputDir, "output", "o", "", "Output directory")
	flags.BoolVar(&f.separate, "separate", false, "Write one file per list instead of a combined file")
	flags.StringSliceVarP(&f.lists, "list", "l", nil, "Only export lists with this id or name (repeatable)")
	flags.BoolVar(&f.includeOwned, "include-owned", false, "Also export owned books as an \"Owned\" list")
	flags.IntVar(&f.concurrency, "concurrency", 0, "Number of lists fetched in parallel")
	flags.StringVar(&f.auditDir, "audit-dir", "", "Directory for the JSON run report")
	flags.StringVar(&f.historyDB, "history-db", "", "SQLite database recording every run")
}

func (f *exportFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Formats = f.formats
	}
	if flags.Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("separate") {
		cfg.SeparateLists = f.separate
	}
	if flags.Changed("list") {
		cfg.Lists = f.lists
	}
	if flags.Changed("include-owned") {
		cfg.IncludeOwned = f.includeOwned
	}
	if flags.Changed("concurrency") {
		cfg.ListConcurrency = f.concurrency
	}
	if flags.Changed("audit-dir") {
		cfg.AuditDir = f.auditDir
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = f.historyDB
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch every list once and write the export files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := prepareExport(ctx, cmd, &flags)
			if err != nil {
				return err
			}
			_, err = export.Run(cmd.Context())
			return err
		},
	}
	flags.bind(cmd)

	return cmd
}

func prepareExport(ctx *commandContext, cmd *cobra.Command, flags *exportFlags) (*ExportCommand, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	formats, err := exporters.ParseFormats(cfg.Formats)
	if err != nil {
		return nil, err
	}
	return &ExportCommand{Config: cfg, Formats: formats, Out: cmd.OutOrStdout()}, nil
}

// ExportCommand runs the pipeline and hands the result to every configured exporter.
type ExportCommand struct {
	Config  *config.Config
	Formats []exporters.Format
	Out     io.Writer
}

// Run performs one export. An aborted run writes nothing and returns the
// abort reason; the run report and history are recorded either way.
func (cmd *ExportCommand) Run(ctx context.Context) (*importers.Library, error) {
	fmt.Fprintln(cmd.Out, "Fable Export")
	fmt.Fprintln(cmd.Out, "============")

	pipeline, err := newPipeline(cmd.Config)
	if err != nil {
		return nil, err
	}

	lib, runErr := pipeline.Run(ctx)
	cmd.recordRun(lib.Summary)
	if runErr != nil {
		return lib, fmt.Errorf("export aborted: %w", runErr)
	}

	fmt.Fprintln(cmd.Out)
	fmt.Fprint(cmd.Out, renderSummary(lib.Summary))
	fmt.Fprintln(cmd.Out)

	if err := cmd.writeOutputs(lib); err != nil {
		return lib, err
	}
	if lib.Summary.HasFailures() {
		return lib, ErrIncompleteRun
	}
	return lib, nil
}

type output struct {
	name  string
	books []entities.Book
}

func (cmd *ExportCommand) outputs(lib *importers.Library) []output {
	if !cmd.Config.SeparateLists {
		return []output{{name: CombinedName, books: lib.Combined()}}
	}

	names := make([]string, len(lib.Lists))
	for i, list := range lib.Lists {
		names[i] = list.List.Name
	}
	unique := utils.UniqueNames(names)

	outputs := make([]output, 0, len(lib.Lists))
	for i, list := range lib.Lists {
		outputs = append(outputs, output{name: unique[i], books: list.Books})
	}
	return outputs
}

// writeOutputs keeps going after a failed file so one broken format does not
// cost the others.
func (cmd *ExportCommand) writeOutputs(lib *importers.Library) error {
	outputs := cmd.outputs(lib)

	var errs []error
	written := 0
	for _, format := range cmd.Formats {
		exporter, err := exporters.New(format, cmd.Config.OutputDir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, out := range outputs {
			if len(out.books) == 0 {
				continue
			}
			result, err := exporter.Export(out.name, out.books)
			if errors.Is(err, exporters.ErrNoBooks) {
				continue
			}
			if err != nil {
				log.Printf("Fable export: %s export of %s failed: %v", format, out.name, err)
				errs = append(errs, fmt.Errorf("%s export of %s: %w", format, out.name, err))
				continue
			}
			written++
			fmt.Fprintf(cmd.Out, "Wrote %s (%d books)\n", result.Path, result.BooksProcessed)
		}
	}

	if written == 0 && len(errs) == 0 {
		fmt.Fprintln(cmd.Out, "No books to export.")
	}
	return errors.Join(errs...)
}

// recordRun saves the run report file and history row. Failures are logged only.
func (cmd *ExportCommand) recordRun(summary entities.RunSummary) {
	if dir := cmd.Config.AuditDir; dir != "" {
		name, err := audit.NewAuditor(dir).SaveRun(summary)
		if err != nil {
			log.Printf("Fable export: failed to save run report: %v", err)
		} else {
			fmt.Fprintf(cmd.Out, "Run report: %s\n", filepath.Join(dir, name))
		}
	}

	if path := cmd.Config.HistoryDB; path != "" {
		db, err := database.NewDatabase(path)
		if err != nil {
			log.Printf("Fable export: failed to open run history: %v", err)
			return
		}
		defer db.Close()
		if err := audit.NewService(runs.NewRepository(db.DB)).RecordRun(summary); err != nil {
			log.Printf("Fable export: %v", err)
			fmt.Fprintf(cmd.Out, "Warning: run history not updated: %v\n", err)
		}
	}
}

func newService(cfg *config.Config) (*fable.Service, error) {
	client, err := fable.NewClient(cfg.UserID, cfg.AuthToken, cfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	return fable.NewService(client, cfg.UserID, fable.ServiceOptions{
		Endpoints: cfg.Endpoints(),
		Retry:     cfg.RetryPolicy(),
		MaxPages:  cfg.MaxPages,
	}), nil
}

func newPipeline(cfg *config.Config) (*importers.Pipeline, error) {
	service, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	return importers.NewPipeline(service, importers.Options{
		Concurrency:  cfg.ListConcurrency,
		IncludeOwned: cfg.IncludeOwned,
		Lists:        cfg.Lists,
	}), nil
}
