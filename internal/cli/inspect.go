package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/catalog"
)

// InspectOptions holds flags shared by the catalog inspection commands.
type InspectOptions struct {
	*RootOptions
	CatalogDir string
}

// ColumnOutput is one column in the JSON payload of the columns command.
type ColumnOutput struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// NewDatabasesCommand creates the databases command.
func NewDatabasesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "databases",
		Short:         "List databases in the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.SQLite, f *OutputFormatter) error {
				names, err := cat.Databases(cmd.Context())
				if err != nil {
					return commandError(f, ErrCodeCatalog, err.Error(), nil)
				}
				return outputNames(f, names)
			})
		},
	}
	addCatalogFlag(cmd, opts)
	return cmd
}

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "schemas <database>",
		Short:         "List schemas of a database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.SQLite, f *OutputFormatter) error {
				names, err := cat.Schemas(cmd.Context(), args[0])
				if err != nil {
					return commandError(f, ErrCodeCatalog, err.Error(), nil)
				}
				return outputNames(f, names)
			})
		},
	}
	addCatalogFlag(cmd, opts)
	return cmd
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "tables <database> <schema>",
		Short:         "List tables of a schema",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.SQLite, f *OutputFormatter) error {
				names, err := cat.Tables(cmd.Context(), args[0], args[1])
				if err != nil {
					return commandError(f, ErrCodeCatalog, err.Error(), nil)
				}
				return outputNames(f, names)
			})
		},
	}
	addCatalogFlag(cmd, opts)
	return cmd
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "columns <database> <schema> <table>",
		Short:         "List columns of a table",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.SQLite, f *OutputFormatter) error {
				cols, err := cat.Columns(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return commandError(f, ErrCodeCatalog, err.Error(), nil)
				}
				if f.Format == "json" {
					out := make([]ColumnOutput, len(cols))
					for i, col := range cols {
						out[i] = ColumnOutput{Name: col.Name, DataType: col.DataType}
					}
					return f.Success(out)
				}
				for _, col := range cols {
					fmt.Fprintf(f.Writer, "%s\t%s\n", col.Name, col.DataType)
				}
				return nil
			})
		},
	}
	addCatalogFlag(cmd, opts)
	return cmd
}

func addCatalogFlag(cmd *cobra.Command, opts *InspectOptions) {
	cmd.Flags().StringVar(&opts.CatalogDir, "catalog", "", "catalog directory (default: from config)")
}

// withCatalog loads config, opens the catalog directory, and hands both to
// the command body. Closing the catalog is handled here.
func withCatalog(opts *InspectOptions, cmd *cobra.Command, fn func(*catalog.SQLite, *OutputFormatter) error) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, cfgPath, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	if cfgPath != "" {
		formatter.VerboseLog("using config %s", cfgPath)
	}

	dir := opts.CatalogDir
	if dir == "" {
		dir = cfg.CatalogDir
	}
	cat, err := catalog.NewSQLite(dir)
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, fmt.Sprintf("opening catalog: %v", err), nil)
	}
	defer cat.Close()

	return fn(cat, formatter)
}

func outputNames(f *OutputFormatter, names []string) error {
	if f.Format == "json" {
		if names == nil {
			names = []string{}
		}
		return f.Success(names)
	}
	for _, name := range names {
		fmt.Fprintln(f.Writer, name)
	}
	return nil
}
