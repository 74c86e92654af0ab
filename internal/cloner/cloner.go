package cloner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dreamware/tableshard/internal/catalog"
	"github.com/dreamware/tableshard/internal/shard"
)

// Cloner copies a table's schema (and optionally its rows) under a new
// name and registers the result as a shard when the name matches the
// naming convention.
type Cloner struct {
	db       *sql.DB
	cat      *catalog.Catalog
	registry *shard.Registry
	logger   *slog.Logger
}

// New creates a Cloner. A nil logger falls back to slog.Default().
func New(db *sql.DB, cat *catalog.Catalog, registry *shard.Registry, logger *slog.Logger) *Cloner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{db: db, cat: cat, registry: registry, logger: logger}
}

// CopyTable creates target with column, index, and constraint definitions
// structurally identical to source. If copyData is true all rows are copied
// verbatim, otherwise target starts empty.
//
// Returns shard.ErrSourceNotFound if source does not exist and
// shard.ErrTargetExists if target already does. DDL and data copy run in a
// single transaction; on error nothing is left behind.
func (c *Cloner) CopyTable(ctx context.Context, source, target string, copyData bool) error {
	exists, err := c.cat.TableExists(ctx, source)
	if err != nil {
		return fmt.Errorf("check source %q: %w", source, err)
	}
	if !exists {
		return fmt.Errorf("copy table %q: %w", source, shard.ErrSourceNotFound)
	}

	exists, err = c.cat.TableExists(ctx, target)
	if err != nil {
		return fmt.Errorf("check target %q: %w", target, err)
	}
	if exists {
		return fmt.Errorf("copy table to %q: %w", target, shard.ErrTargetExists)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clone of %q: %w", source, err)
	}
	defer tx.Rollback()

	dialect := c.cat.Dialect()
	stmts, err := dialect.CloneTableSQL(ctx, tx, source, target)
	if err != nil {
		return fmt.Errorf("clone DDL for %q: %w", source, err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clone %q -> %q: %w", source, target, err)
		}
	}

	if copyData {
		copySQL := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s",
			dialect.QuoteIdent(target), dialect.QuoteIdent(source))
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return fmt.Errorf("copy rows %q -> %q: %w", source, target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clone of %q: %w", source, err)
	}

	if suffix, ok := c.registry.Naming().SuffixOf(source, target); ok {
		c.registry.Register(source, suffix)
	}

	c.logger.Info("table cloned",
		"source", source,
		"target", target,
		"copy_data", copyData)
	return nil
}
