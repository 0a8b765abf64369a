package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/runner"
	"github.com/quarry-dev/quarry/internal/sqlgen"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	CatalogDir string
	Limit      int
}

// RunOutput is the JSON payload of a successful run.
type RunOutput struct {
	SQL      string     `json:"sql"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	Elapsed  string     `json:"elapsed"`
	RowLimit int        `json:"row_limit"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <definition.cue>",
		Short: "Compile a query definition and preview its results",
		Long: `Compile a saved query definition and execute it against the catalog's
database, capped to a small row preview.

The statement runs with a LIMIT applied; the full result set is never
pulled. Example:

  quarry run --catalog ./warehouse queries/open_orders.cue
  quarry run --limit 25 queries/open_orders.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CatalogDir, "catalog", "", "catalog directory (default: from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "preview row cap (default: from config)")

	return cmd
}

func runRun(opts *RunOptions, defPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, cat, cfg, err := loadDefinitionSession(opts.RootOptions, opts.CatalogDir, defPath, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.RowLimit
	}
	if limit <= 0 {
		limit = runner.DefaultRowLimit
	}

	ctx := cmd.Context()
	sqlText, err := sess.Compile(ctx)
	if err != nil {
		if sqlgen.IsMissingContext(err) {
			return commandError(formatter, ErrCodeMissingContext, err.Error(), nil)
		}
		return commandError(formatter, ErrCodeCatalog, fmt.Sprintf("compiling definition: %v", err), nil)
	}
	formatter.VerboseLog("compiled statement:\n%s", sqlText)

	db, err := cat.DB(sess.Database)
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, fmt.Sprintf("opening database: %v", err), nil)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(formatter.GetErrWriter(), &slog.HandlerOptions{Level: level}))

	// The connection is already scoped to the definition's database, so
	// the three-part names are lowered to schema-qualified form.
	scoped := runner.StripDatabaseQualifier(sqlText, sess.Database)
	res, err := runner.New(db, log).Execute(ctx, scoped, limit)
	if err != nil {
		return commandError(formatter, ErrCodeExecution, err.Error(), nil)
	}

	if formatter.Format == "json" {
		rows := res.Rows
		if rows == nil {
			rows = [][]string{}
		}
		return formatter.Success(RunOutput{
			SQL:      sqlText,
			Columns:  res.Columns,
			Rows:     rows,
			Elapsed:  res.Elapsed.String(),
			RowLimit: limit,
		})
	}

	printResultTable(formatter, res)
	fmt.Fprintf(formatter.Writer, "\n%d row(s) in %s (limit %d)\n", len(res.Rows), res.Elapsed, limit)
	return nil
}

// printResultTable renders a fixed-width text table of the preview rows.
func printResultTable(formatter *OutputFormatter, res *runner.Result) {
	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = len(col)
	}
	for _, row := range res.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(formatter.Writer, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(res.Columns)
	rules := make([]string, len(res.Columns))
	for i := range rules {
		rules[i] = strings.Repeat("-", widths[i])
	}
	writeRow(rules)
	for _, row := range res.Rows {
		writeRow(row)
	}
}
