// Package catalog lists the database objects a user can build queries
// against: databases, schemas, tables, and column definitions.
//
// The Catalog interface is the warehouse metadata client the query builder
// consumes. The SQLite implementation maps a directory of .db files to
// databases; attached schema names (usually just "main") stand in for
// warehouse schemas. Memo wraps any Catalog with session-lifetime
// memoization keyed on (database, schema, table), mirroring how the
// interactive layer re-reads the same definitions on every redraw.
package catalog
