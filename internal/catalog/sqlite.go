package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite maps a directory of SQLite files to a small warehouse: every
// *.db file is a database, its attached schemas (normally just "main") are
// the schemas, and sqlite_master supplies tables and columns.
//
// Connections are opened lazily per database and kept for the lifetime of
// the catalog. Safe for concurrent use.
type SQLite struct {
	dir string

	mu    sync.Mutex
	conns map[string]*sql.DB
}

// NewSQLite creates a catalog over the given directory. The directory must
// exist; databases appearing after creation are picked up on the next
// Databases call.
func NewSQLite(dir string) (*SQLite, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog directory: %s is not a directory", dir)
	}
	return &SQLite{dir: dir, conns: make(map[string]*sql.DB)}, nil
}

// Close closes every opened database connection.
func (c *SQLite) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for name, db := range c.conns {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", name, err)
		}
		delete(c.conns, name)
	}
	return firstErr
}

// DB returns the connection for one database, opening it on first use.
// The runner executes generated statements through this handle.
func (c *SQLite) DB(db string) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.conns[db]; ok {
		return conn, nil
	}

	path := filepath.Join(c.dir, db+".db")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %q not found: %w", db, err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", db, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to %q: %w", db, err)
	}

	// Single connection per file keeps SQLITE_BUSY out of interactive use.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	c.conns[db] = conn
	return conn, nil
}

// Databases lists the *.db files in the catalog directory, sorted by name.
func (c *SQLite) Databases(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".db"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Schemas lists the attached schemas of one database via PRAGMA
// database_list. For plain files this is just "main".
func (c *SQLite) Schemas(ctx context.Context, db string) ([]string, error) {
	conn, err := c.DB(db)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("listing schemas of %q: %w", db, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var seq int
		var name, file sql.NullString
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("scanning schema row: %w", err)
		}
		if name.Valid {
			names = append(names, name.String)
		}
	}
	return names, rows.Err()
}

// Tables lists the user tables of one schema in name order. Internal
// sqlite_* bookkeeping tables are hidden.
func (c *SQLite) Tables(ctx context.Context, db, schema string) ([]string, error) {
	conn, err := c.DB(db)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name`,
		quoteIdent(schema),
	)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tables of %q.%q: %w", db, schema, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Columns returns one table's column definitions in declaration order,
// as reported by table_info (which orders by column id).
func (c *SQLite) Columns(ctx context.Context, db, schema, table string) ([]ColumnDef, error) {
	conn, err := c.DB(db)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteIdent(schema), quoteIdent(table))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describing %q.%q.%q: %w", db, schema, table, err)
	}
	defer rows.Close()

	var cols []ColumnDef
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		cols = append(cols, ColumnDef{Name: name, DataType: typ})
	}
	return cols, rows.Err()
}

// QualifiedColumns renders the table's columns as "table"."column" tokens.
func (c *SQLite) QualifiedColumns(ctx context.Context, db, schema, table string) ([]string, error) {
	cols, err := c.Columns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(cols))
	for _, col := range cols {
		refs = append(refs, quoteIdent(table)+"."+quoteIdent(col.Name))
	}
	return refs, nil
}

// quoteIdent wraps an identifier in double quotes, doubling any embedded
// quote. Used for names read back from sqlite_master, which are trusted
// but may contain unusual characters.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
