package catalog

import "context"

// ColumnDef is one column of a table, in declaration order.
type ColumnDef struct {
	Name     string
	DataType string
}

// Catalog lists queryable database objects. Implementations perform
// blocking I/O; the clause compiler never touches a Catalog directly.
type Catalog interface {
	// Databases returns the names of all reachable databases.
	Databases(ctx context.Context) ([]string, error)

	// Schemas returns the schema names inside one database.
	Schemas(ctx context.Context, db string) ([]string, error)

	// Tables returns the table names inside one schema.
	Tables(ctx context.Context, db, schema string) ([]string, error)

	// Columns returns the column definitions of one table, ordered by
	// declaration position.
	Columns(ctx context.Context, db, schema, table string) ([]ColumnDef, error)

	// QualifiedColumns returns the table's columns as qualified references
	// of the form "table"."column", the opaque tokens the shape model and
	// clause compiler match against.
	QualifiedColumns(ctx context.Context, db, schema, table string) ([]string, error)
}
