package catalog

import (
	"context"
	"fmt"
	"strings"
)

// mysqlDialect implements Dialect against INFORMATION_SCHEMA. It only
// generates SQL; linking a MySQL driver is the application's choice.
type mysqlDialect struct{}

// MySQL returns the MySQL dialect.
func MySQL() Dialect { return mysqlDialect{} }

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) ListTables(ctx context.Context, q Querier, prefix string) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME LIKE ? ORDER BY TABLE_NAME`
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

func (mysqlDialect) TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	const query = `SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (mysqlDialect) Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	const query = `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_KEY
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	rows, err := q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			col      Column
			nullable string
			key      string
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &key); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		col.PrimaryKey = key == "PRI"
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (mysqlDialect) HasIndex(ctx context.Context, q Querier, table, index string) (bool, error) {
	const query = `SELECT COUNT(*) FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, table, index).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CloneTableSQL uses CREATE TABLE ... LIKE, which carries columns, indexes,
// and unique constraints in a single statement.
func (d mysqlDialect) CloneTableSQL(_ context.Context, _ Querier, source, target string) ([]string, error) {
	return []string{
		fmt.Sprintf("CREATE TABLE %s LIKE %s", d.QuoteIdent(target), d.QuoteIdent(source)),
	}, nil
}

func (d mysqlDialect) AddColumnSQL(table string, col Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), columnDef(d, col))
}

func (d mysqlDialect) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d mysqlDialect) RenameColumnSQL(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		d.QuoteIdent(table), d.QuoteIdent(oldName), d.QuoteIdent(newName))
}

func (d mysqlDialect) AlterColumnSQL(table string, col Column) (string, error) {
	null := ""
	if !col.Nullable {
		null = " NOT NULL"
	}
	return fmt.Sprintf("ALTER TABLE %s MODIFY %s %s%s",
		d.QuoteIdent(table), d.QuoteIdent(col.Name), col.Type, null), nil
}

func (d mysqlDialect) SetDefaultSQL(table, column, literal string) (string, error) {
	if literal == "" {
		return fmt.Sprintf("ALTER TABLE %s ALTER %s DROP DEFAULT",
			d.QuoteIdent(table), d.QuoteIdent(column)), nil
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER %s SET DEFAULT %s",
		d.QuoteIdent(table), d.QuoteIdent(column), literal), nil
}

func (d mysqlDialect) CreateIndexSQL(table, name string, columns []string, unique bool) string {
	kw := "INDEX"
	if unique {
		kw = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)",
		kw, d.QuoteIdent(name), d.QuoteIdent(table), quoteJoin(d, columns))
}

func (d mysqlDialect) DropIndexSQL(table, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", d.QuoteIdent(table), d.QuoteIdent(name))
}

func (mysqlDialect) InsertVerb(orIgnore bool) string {
	if orIgnore {
		return "INSERT IGNORE"
	}
	return "INSERT"
}
