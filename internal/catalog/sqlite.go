package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// sqliteDialect implements Dialect against sqlite_master and the table_info
// pragma.
type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike escapes the LIKE metacharacters in a literal prefix so that a
// shard separator of "_" does not act as a single-character wildcard.
func escapeLike(literal string) string {
	literal = strings.ReplaceAll(literal, `\`, `\\`)
	literal = strings.ReplaceAll(literal, `%`, `\%`)
	literal = strings.ReplaceAll(literal, `_`, `\_`)
	return literal
}

func (sqliteDialect) ListTables(ctx context.Context, q Querier, prefix string) ([]string, error) {
	const query = `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		AND name LIKE ? ESCAPE '\' ORDER BY name`
	rows, err := q.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (sqliteDialect) TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	const query = `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d sqliteDialect) Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	// PRAGMA arguments cannot be bound, so the identifier is quoted in.
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &col.Default, &pk); err != nil {
			return nil, err
		}
		col.Nullable = notNull == 0
		col.PrimaryKey = pk > 0
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (sqliteDialect) HasIndex(ctx context.Context, q Querier, table, index string) (bool, error) {
	const query = `SELECT count(*) FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, table, index).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Identifier: quoted in any of SQLite's accepted styles, or bare.
const sqliteIdent = "(?:\"[^\"]+\"|`[^`]+`|\\[[^\\]]+\\]|[A-Za-z_][A-Za-z0-9_]*)"

var (
	reCreateTable = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+` + sqliteIdent + `\s*\(`)
	reCreateIndex = regexp.MustCompile(`(?is)^\s*CREATE\s+(UNIQUE\s+)?INDEX\s+(` + sqliteIdent + `)\s+ON\s+` + sqliteIdent + `\s*\(`)
)

// CloneTableSQL reads the source table's original DDL out of sqlite_master
// and rewrites it to create target instead, carrying secondary indexes
// along under target-prefixed names (index names are database-global in
// SQLite, so they cannot be reused verbatim).
func (d sqliteDialect) CloneTableSQL(ctx context.Context, q Querier, source, target string) ([]string, error) {
	const query = `SELECT type, name, sql FROM sqlite_master
		WHERE tbl_name = ? AND sql IS NOT NULL
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`
	rows, err := q.QueryContext(ctx, query, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var kind, name, ddl string
		if err := rows.Scan(&kind, &name, &ddl); err != nil {
			return nil, err
		}
		switch kind {
		case "table":
			loc := reCreateTable.FindStringIndex(ddl)
			if loc == nil {
				return nil, fmt.Errorf("unrecognized table DDL for %q", source)
			}
			stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (%s", d.QuoteIdent(target), ddl[loc[1]:]))
		case "index":
			m := reCreateIndex.FindStringSubmatchIndex(ddl)
			if m == nil {
				return nil, fmt.Errorf("unrecognized index DDL %q on %q", name, source)
			}
			unique := ""
			if m[2] >= 0 {
				unique = "UNIQUE "
			}
			newName := target + "_" + name
			if rest, ok := strings.CutPrefix(name, source); ok {
				newName = target + rest
			}
			stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s",
				unique, d.QuoteIdent(newName), d.QuoteIdent(target), ddl[m[1]:]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no DDL in catalog for table %q", source)
	}
	return stmts, nil
}

func (d sqliteDialect) AddColumnSQL(table string, col Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), columnDef(d, col))
}

func (d sqliteDialect) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d sqliteDialect) RenameColumnSQL(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		d.QuoteIdent(table), d.QuoteIdent(oldName), d.QuoteIdent(newName))
}

// SQLite has no in-place column alteration; rebuilding the table would lose
// rowids, triggers, and FK references, so the operation is refused.
func (sqliteDialect) AlterColumnSQL(string, Column) (string, error) {
	return "", fmt.Errorf("alter column: %w", ErrUnsupported)
}

func (sqliteDialect) SetDefaultSQL(string, string, string) (string, error) {
	return "", fmt.Errorf("set default: %w", ErrUnsupported)
}

func (d sqliteDialect) CreateIndexSQL(table, name string, columns []string, unique bool) string {
	kw := "INDEX"
	if unique {
		kw = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)",
		kw, d.QuoteIdent(name), d.QuoteIdent(table), quoteJoin(d, columns))
}

func (d sqliteDialect) DropIndexSQL(_, name string) string {
	return fmt.Sprintf("DROP INDEX %s", d.QuoteIdent(name))
}

func (sqliteDialect) InsertVerb(orIgnore bool) string {
	if orIgnore {
		return "INSERT OR IGNORE"
	}
	return "INSERT"
}

// columnDef renders "name TYPE [NOT NULL] [DEFAULT literal]".
func columnDef(d Dialect, col Column) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(col.Type)
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.Default.Valid {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.Default.String)
	}
	return b.String()
}

// quoteJoin renders a comma-separated quoted identifier list.
func quoteJoin(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
