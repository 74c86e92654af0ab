package redirect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/dreamware/tableshard/internal/catalog"
	"github.com/dreamware/tableshard/internal/shard"
)

// DefaultBatchSize is the number of rows per INSERT statement BulkInsert
// uses when none is given.
const DefaultBatchSize = 5

// BulkOptions tunes BulkInsert.
type BulkOptions struct {
	// BatchSize is the number of rows per statement; 0 means
	// DefaultBatchSize.
	BatchSize int

	// OrIgnore makes rows that violate a unique constraint be silently
	// skipped instead of failing the batch.
	OrIgnore bool
}

// Redirector resolves (base, suffix) pairs to physical table names and
// issues shard-targeted statements.
type Redirector struct {
	db       *sql.DB
	registry *shard.Registry
	dialect  catalog.Dialect
}

// New creates a Redirector.
func New(db *sql.DB, registry *shard.Registry, dialect catalog.Dialect) *Redirector {
	return &Redirector{db: db, registry: registry, dialect: dialect}
}

// ResolveTable returns the physical table name for base and suffix. An
// empty suffix resolves to base itself. A suffix with no existing shard
// table fails with shard.ErrUnknownShard; create the shard with CopyTable
// first.
func (r *Redirector) ResolveTable(ctx context.Context, base, suffix string) (string, error) {
	if suffix == "" {
		return base, nil
	}
	exists, err := r.registry.ShardExists(ctx, base, suffix)
	if err != nil {
		return "", fmt.Errorf("resolve %s/%s: %w", base, suffix, err)
	}
	if !exists {
		return "", fmt.Errorf("resolve %s/%s: %w", base, suffix, shard.ErrUnknownShard)
	}
	return r.registry.Naming().PhysicalName(base, suffix), nil
}

// Insert writes one row into the shard named by suffix (or the base table
// when suffix is empty). Columns are taken from the row map in sorted
// order; nil values are omitted so column defaults apply.
func (r *Redirector) Insert(ctx context.Context, base, suffix string, row map[string]any) error {
	if len(row) == 0 {
		return fmt.Errorf("insert into %s: no columns", base)
	}
	table, err := r.ResolveTable(ctx, base, suffix)
	if err != nil {
		return err
	}

	columns := make([]string, 0, len(row))
	for column, value := range row {
		if value == nil {
			continue
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return fmt.Errorf("insert into %s: all values nil", table)
	}
	slices.Sort(columns)

	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = row[column]
	}

	stmt := fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		r.dialect.InsertVerb(false),
		r.dialect.QuoteIdent(table),
		quoteJoin(r.dialect, columns),
		placeholders(len(columns), 1))
	_, err = r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// BulkInsert writes rows into the shard named by suffix in batches, one
// multi-row INSERT per batch. Every row must have one value per column.
func (r *Redirector) BulkInsert(ctx context.Context, base, suffix string, columns []string, rows [][]any, opts BulkOptions) error {
	if len(rows) == 0 {
		return fmt.Errorf("bulk insert into %s: no rows", base)
	}
	if len(columns) == 0 {
		return fmt.Errorf("bulk insert into %s: no columns", base)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("bulk insert into %s: row %d has %d values for %d columns",
				base, i, len(row), len(columns))
		}
	}

	table, err := r.ResolveTable(ctx, base, suffix)
	if err != nil {
		return err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	verb := r.dialect.InsertVerb(opts.OrIgnore)
	columnList := quoteJoin(r.dialect, columns)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		chunk := rows[start:end]

		stmt := fmt.Sprintf("%s INTO %s (%s) VALUES %s",
			verb, r.dialect.QuoteIdent(table), columnList,
			placeholders(len(columns), len(chunk)))

		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("bulk insert into %s (rows %d-%d): %w", table, start, end-1, err)
		}
	}
	return nil
}

// Query runs SELECT * against the shard named by suffix, with an optional
// WHERE clause.
func (r *Redirector) Query(ctx context.Context, base, suffix, where string, args ...any) (*sql.Rows, error) {
	table, err := r.ResolveTable(ctx, base, suffix)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT * FROM %s", r.dialect.QuoteIdent(table))
	if where != "" {
		stmt += " WHERE " + where
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}

// placeholders renders nRows comma-separated "(?, ?, …)" groups.
func placeholders(nCols, nRows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", nCols), ", ") + ")"
	groups := make([]string, nRows)
	for i := range groups {
		groups[i] = group
	}
	return strings.Join(groups, ", ")
}

func quoteJoin(d catalog.Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
