package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/catalog"
	"github.com/quarry-dev/quarry/internal/session"
	"github.com/quarry-dev/quarry/internal/shapedef"
	"github.com/quarry-dev/quarry/internal/sqlgen"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	CatalogDir string // overrides the configured catalog directory
	Strict     bool   // fail when any fragment was dropped
}

// CompileOutput is the JSON payload of a successful compile.
type CompileOutput struct {
	SQL      string           `json:"sql"`
	Clean    bool             `json:"clean"`
	Warnings []sqlgen.Warning `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <definition.cue>",
		Short: "Compile a query definition to SQL",
		Long: `Compile a saved query definition file to a SQL SELECT statement.

The definition's columns are checked against the catalog; fragments that
reference unknown columns or carry rejected values are dropped with a
warning and a best-effort statement is still printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CatalogDir, "catalog", "", "catalog directory (default: from config)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any fragment was dropped")

	return cmd
}

func runCompile(opts *CompileOptions, defPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, cat, _, err := loadDefinitionSession(opts.RootOptions, opts.CatalogDir, defPath, formatter)
	if err != nil {
		return err
	}
	defer cat.Close()

	res, err := sess.Validate(cmd.Context())
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, fmt.Sprintf("reading catalog: %v", err), nil)
	}
	for _, w := range res.Warnings {
		formatter.VerboseLog("dropped: %s", w)
	}
	if res.SQL == "" {
		return commandError(formatter, ErrCodeMissingContext, "definition has no compilable context", res.Warnings)
	}
	if opts.Strict && !res.Clean {
		_ = formatter.Error(ErrCodeDirtyStatement,
			fmt.Sprintf("statement compiled with %d dropped fragment(s)", len(res.Warnings)), res.Warnings)
		return NewExitError(ExitFailure, "statement is not clean")
	}

	if formatter.Format == "json" {
		return formatter.Success(CompileOutput{SQL: res.SQL, Clean: res.Clean, Warnings: res.Warnings})
	}
	fmt.Fprintln(formatter.Writer, res.SQL)
	return nil
}

// loadDefinitionSession loads config, the definition file, and the catalog,
// and assembles a session scoped to the definition's target. The caller
// owns closing the returned catalog.
func loadDefinitionSession(rootOpts *RootOptions, catalogDir, defPath string, formatter *OutputFormatter) (*session.Session, *catalog.SQLite, *Config, error) {
	cfg, cfgPath, err := LoadConfig(rootOpts.ConfigPath)
	if err != nil {
		return nil, nil, nil, commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	if cfgPath != "" {
		formatter.VerboseLog("using config %s", cfgPath)
	}
	if catalogDir == "" {
		catalogDir = cfg.CatalogDir
	}

	def, err := shapedef.LoadFile(defPath)
	if err != nil {
		var compileErr *shapedef.CompileError
		if errors.As(err, &compileErr) {
			return nil, nil, nil, commandError(formatter, ErrCodeDefinition, compileErr.Error(), nil)
		}
		return nil, nil, nil, commandError(formatter, ErrCodeDefinition, fmt.Sprintf("loading definition: %v", err), nil)
	}
	formatter.VerboseLog("loaded definition %s (table %s)", defPath, def.Shape.Table)

	cat, err := catalog.NewSQLite(catalogDir)
	if err != nil {
		return nil, nil, nil, commandError(formatter, ErrCodeCatalog, fmt.Sprintf("opening catalog: %v", err), nil)
	}

	sess := &session.Session{
		Database: def.Database,
		Schema:   def.Schema,
		Shape:    def.Shape,
		Catalog:  catalog.NewMemo(cat),
	}
	// Config-level defaults fill gaps the definition leaves open.
	if sess.Database == "" {
		sess.Database = cfg.Database
	}
	if sess.Schema == "" {
		sess.Schema = cfg.Schema
	}
	if sess.Database == "" || sess.Schema == "" || sess.Shape.Table == "" {
		cat.Close()
		return nil, nil, nil, commandError(formatter, ErrCodeMissingContext,
			"no database, schema, and table selected (set them in the definition or in quarry.yaml)", nil)
	}
	return sess, cat, cfg, nil
}
