package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// ErrUnsupported is returned when a dialect cannot express a requested
// schema operation (e.g. altering a column's type on SQLite).
var ErrUnsupported = errors.New("operation not supported by dialect")

// Querier is the subset of *sql.DB and *sql.Tx the catalog reads through.
// Passing the surrounding transaction lets catalog checks observe DDL that
// the transaction itself has issued but not yet committed.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Column describes one column of a table as reported by the catalog.
type Column struct {
	Name       string         // Column name
	Type       string         // Engine type as the catalog reports it
	Nullable   bool           // Whether NULL is permitted
	Default    sql.NullString // Default value as a SQL literal, if any
	PrimaryKey bool           // Whether the column is part of the primary key
}

// Dialect renders and runs the engine-specific side of catalog inspection
// and DDL generation. All identifier interpolation goes through QuoteIdent.
type Dialect interface {
	// Name identifies the dialect ("sqlite", "mysql").
	Name() string

	// QuoteIdent quotes a table, column, or index identifier.
	QuoteIdent(name string) string

	// ListTables returns the names of tables whose name starts with prefix,
	// sorted ascending. System tables are excluded.
	ListTables(ctx context.Context, q Querier, prefix string) ([]string, error)

	// TableExists reports whether a table with the exact name exists.
	TableExists(ctx context.Context, q Querier, name string) (bool, error)

	// Columns returns the column definitions of a table in ordinal order.
	Columns(ctx context.Context, q Querier, table string) ([]Column, error)

	// HasIndex reports whether the named index exists on the table.
	HasIndex(ctx context.Context, q Querier, table, index string) (bool, error)

	// CloneTableSQL returns the DDL statements that create target with the
	// same columns, indexes, and constraints as source. Statements must be
	// executed in order, inside one transaction where the engine allows.
	CloneTableSQL(ctx context.Context, q Querier, source, target string) ([]string, error)

	// AddColumnSQL renders ALTER TABLE ... ADD COLUMN for col.
	AddColumnSQL(table string, col Column) string

	// DropColumnSQL renders ALTER TABLE ... DROP COLUMN.
	DropColumnSQL(table, column string) string

	// RenameColumnSQL renders a column rename.
	RenameColumnSQL(table, oldName, newName string) string

	// AlterColumnSQL renders an in-place column type/nullability change.
	// Returns ErrUnsupported where the engine has no such statement.
	AlterColumnSQL(table string, col Column) (string, error)

	// SetDefaultSQL renders a change of a column's default value. An empty
	// literal drops the default. Returns ErrUnsupported where the engine
	// has no such statement.
	SetDefaultSQL(table, column, literal string) (string, error)

	// CreateIndexSQL renders CREATE [UNIQUE] INDEX over the given columns.
	CreateIndexSQL(table, name string, columns []string, unique bool) string

	// DropIndexSQL renders the removal of an index from a table.
	DropIndexSQL(table, name string) string

	// InsertVerb returns the INSERT keyword sequence, optionally in the
	// engine's conflict-ignoring form.
	InsertVerb(orIgnore bool) string
}

// Catalog binds a database handle to a dialect and exposes the inspection
// calls the registry, cloner, and applicator need.
type Catalog struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a Catalog over db using the given dialect.
func New(db *sql.DB, dialect Dialect) *Catalog {
	return &Catalog{db: db, dialect: dialect}
}

// Dialect returns the catalog's dialect.
func (c *Catalog) Dialect() Dialect { return c.dialect }

// DB returns the underlying database handle.
func (c *Catalog) DB() *sql.DB { return c.db }

// Tables returns all table names starting with prefix, sorted ascending.
func (c *Catalog) Tables(ctx context.Context, prefix string) ([]string, error) {
	return c.dialect.ListTables(ctx, c.db, prefix)
}

// TableExists reports whether the named table exists.
func (c *Catalog) TableExists(ctx context.Context, name string) (bool, error) {
	return c.dialect.TableExists(ctx, c.db, name)
}

// Columns returns the table's column definitions in ordinal order.
func (c *Catalog) Columns(ctx context.Context, table string) ([]Column, error) {
	return c.dialect.Columns(ctx, c.db, table)
}

// HasColumn reports whether the table has a column with the given name.
func (c *Catalog) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return HasColumn(ctx, c.db, c.dialect, table, column)
}

// HasIndex reports whether the named index exists on the table.
func (c *Catalog) HasIndex(ctx context.Context, table, index string) (bool, error) {
	return c.dialect.HasIndex(ctx, c.db, table, index)
}

// HasColumn is the Querier-level form of Catalog.HasColumn, usable inside a
// transaction so the check sees that transaction's own uncommitted DDL.
func HasColumn(ctx context.Context, q Querier, d Dialect, table, column string) (bool, error) {
	cols, err := d.Columns(ctx, q, table)
	if err != nil {
		return false, err
	}
	for _, col := range cols {
		if col.Name == column {
			return true, nil
		}
	}
	return false, nil
}
