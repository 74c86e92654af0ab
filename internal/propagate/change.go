package propagate

import (
	"fmt"
	"strings"

	"github.com/dreamware/tableshard/internal/catalog"
)

// Kind discriminates the schema change variants.
type Kind string

const (
	KindAddColumn    Kind = "add-column"
	KindDropColumn   Kind = "drop-column"
	KindRenameColumn Kind = "rename-column"
	KindAlterColumn  Kind = "alter-column"
	KindSetDefault   Kind = "set-default"
	KindAddIndex     Kind = "add-index"
	KindDropIndex    Kind = "drop-index"
	KindAddUnique    Kind = "add-unique"
	KindDropUnique   Kind = "drop-unique"
)

// Change is one DDL-level schema change, described structurally so it can
// be rendered against any table name. Only the fields relevant to its Kind
// are set; use the constructors.
type Change struct {
	Kind    Kind
	Column  catalog.Column // add-column, alter-column
	Name    string         // column or index name for drop/rename/set-default
	NewName string         // rename-column
	Columns []string       // add-index, add-unique member columns
	Unique  bool           // add-index
	Literal string         // set-default value as a SQL literal, "" drops it
}

// AddColumn adds col to the table.
func AddColumn(col catalog.Column) Change {
	return Change{Kind: KindAddColumn, Column: col}
}

// DropColumn removes the named column.
func DropColumn(name string) Change {
	return Change{Kind: KindDropColumn, Name: name}
}

// RenameColumn renames a column.
func RenameColumn(oldName, newName string) Change {
	return Change{Kind: KindRenameColumn, Name: oldName, NewName: newName}
}

// AlterColumn changes a column's type or nullability in place to match col.
func AlterColumn(col catalog.Column) Change {
	return Change{Kind: KindAlterColumn, Column: col}
}

// SetDefault changes the column's default value. The literal is raw SQL
// ("'0'", "CURRENT_TIMESTAMP"); an empty literal drops the default.
func SetDefault(column, literal string) Change {
	return Change{Kind: KindSetDefault, Name: column, Literal: literal}
}

// AddIndex creates an index named name over columns.
func AddIndex(name string, columns []string, unique bool) Change {
	return Change{Kind: KindAddIndex, Name: name, Columns: columns, Unique: unique}
}

// DropIndex removes the named index.
func DropIndex(name string) Change {
	return Change{Kind: KindDropIndex, Name: name}
}

// AddUnique creates a composite unique constraint over columns, named
// "<col>_<col>_uniq" (plus the per-shard prefix at apply time) so it can
// be recognized and dropped later.
func AddUnique(columns ...string) Change {
	return Change{Kind: KindAddUnique, Columns: columns}
}

// DropUnique removes the unique constraint previously created by AddUnique
// over the same columns.
func DropUnique(columns ...string) Change {
	return Change{Kind: KindDropUnique, Columns: columns}
}

// UniqueName returns the conventional name of the unique constraint over
// columns: the column names joined by "_" with a "_uniq" marker.
func UniqueName(columns []string) string {
	return strings.Join(columns, "_") + "_uniq"
}

// scoped rewrites the change's index name for one shard table, the same
// way the cloner renames cloned indexes: a name carrying the base table's
// prefix keeps it swapped for the shard's, any other name gets the shard
// table prepended. Index names are database-global on some engines, so the
// same name cannot be reused across shard tables.
func (c Change) scoped(base, table string) Change {
	switch c.Kind {
	case KindAddIndex, KindDropIndex, KindAddUnique, KindDropUnique:
		name := c.indexName()
		if rest, ok := strings.CutPrefix(name, base); ok {
			c.Name = table + rest
		} else {
			c.Name = table + "_" + name
		}
	}
	return c
}

// indexName returns the index the change creates or drops, or "".
func (c Change) indexName() string {
	switch c.Kind {
	case KindAddIndex, KindDropIndex:
		return c.Name
	case KindAddUnique, KindDropUnique:
		if c.Name != "" {
			return c.Name
		}
		return UniqueName(c.Columns)
	}
	return ""
}

// SQL renders the change against table in the given dialect.
func (c Change) SQL(d catalog.Dialect, table string) ([]string, error) {
	switch c.Kind {
	case KindAddColumn:
		return []string{d.AddColumnSQL(table, c.Column)}, nil
	case KindDropColumn:
		return []string{d.DropColumnSQL(table, c.Name)}, nil
	case KindRenameColumn:
		return []string{d.RenameColumnSQL(table, c.Name, c.NewName)}, nil
	case KindAlterColumn:
		stmt, err := d.AlterColumnSQL(table, c.Column)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	case KindSetDefault:
		stmt, err := d.SetDefaultSQL(table, c.Name, c.Literal)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	case KindAddIndex:
		return []string{d.CreateIndexSQL(table, c.Name, c.Columns, c.Unique)}, nil
	case KindDropIndex:
		return []string{d.DropIndexSQL(table, c.Name)}, nil
	case KindAddUnique:
		return []string{d.CreateIndexSQL(table, c.indexName(), c.Columns, true)}, nil
	case KindDropUnique:
		return []string{d.DropIndexSQL(table, c.indexName())}, nil
	}
	return nil, fmt.Errorf("unknown change kind %q", c.Kind)
}

// String describes the change for logs.
func (c Change) String() string {
	switch c.Kind {
	case KindAddColumn, KindAlterColumn:
		return fmt.Sprintf("%s %s", c.Kind, c.Column.Name)
	case KindRenameColumn:
		return fmt.Sprintf("%s %s -> %s", c.Kind, c.Name, c.NewName)
	case KindAddUnique, KindDropUnique:
		return fmt.Sprintf("%s %s", c.Kind, c.indexName())
	default:
		return fmt.Sprintf("%s %s", c.Kind, c.Name)
	}
}
