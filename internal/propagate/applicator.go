package propagate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dreamware/tableshard/internal/catalog"
	"github.com/dreamware/tableshard/internal/shard"
)

// Applicator replays schema changes against every shard of a base table.
// It never decides when to run; that belongs to the migration hook.
type Applicator struct {
	db       *sql.DB
	cat      *catalog.Catalog
	registry *shard.Registry
	logger   *slog.Logger
}

// NewApplicator creates an Applicator. A nil logger falls back to
// slog.Default().
func NewApplicator(db *sql.DB, cat *catalog.Catalog, registry *shard.Registry, logger *slog.Logger) *Applicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applicator{db: db, cat: cat, registry: registry, logger: logger}
}

// Propagate applies changes, in order, to every existing shard of base.
//
// Every shard is attempted regardless of earlier failures; each shard's
// changes run in their own transaction. If any shard fails the returned
// error is a *shard.PartialError listing both the failed and the succeeded
// suffixes. A base with zero shards is a no-op success.
func (a *Applicator) Propagate(ctx context.Context, base string, changes ...Change) error {
	if len(changes) == 0 {
		return nil
	}

	suffixes, err := a.registry.ListShards(ctx, base)
	if err != nil {
		return fmt.Errorf("list shards of %q: %w", base, err)
	}
	if len(suffixes) == 0 {
		a.logger.Info("no shards to migrate", "base", base)
		return nil
	}

	perr := &shard.PartialError{Base: base}
	for _, suffix := range suffixes {
		table := a.registry.Naming().PhysicalName(base, suffix)
		if err := a.applyShard(ctx, base, table, changes); err != nil {
			a.logger.Error("shard migration failed",
				"base", base,
				"shard", suffix,
				"error", err)
			perr.Failed = append(perr.Failed, &shard.ShardError{Suffix: suffix, Err: err})
			continue
		}
		a.logger.Info("shard migrated",
			"base", base,
			"shard", suffix,
			"changes", len(changes))
		perr.Succeeded = append(perr.Succeeded, suffix)
	}

	if len(perr.Failed) > 0 {
		return perr
	}
	return nil
}

// applyShard runs all changes against one shard table in one transaction.
// Index names are scoped to the shard before rendering.
func (a *Applicator) applyShard(ctx context.Context, base, table string, changes []Change) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	dialect := a.cat.Dialect()
	for _, change := range changes {
		change = change.scoped(base, table)
		applied, err := a.alreadyApplied(ctx, tx, table, change)
		if err != nil {
			return fmt.Errorf("%s: %w", change, err)
		}
		if applied {
			// The shard already matches; re-running would fail spuriously.
			a.logger.Debug("change already present", "table", table, "change", change.String())
			continue
		}

		stmts, err := change.SQL(dialect, table)
		if err != nil {
			return fmt.Errorf("%s: %w", change, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", change, err)
			}
		}
	}

	return tx.Commit()
}

// alreadyApplied reports whether an additive change is already visible on
// the shard, checking through the transaction so earlier statements in the
// same run are seen.
func (a *Applicator) alreadyApplied(ctx context.Context, tx *sql.Tx, table string, c Change) (bool, error) {
	d := a.cat.Dialect()
	switch c.Kind {
	case KindAddColumn:
		return catalog.HasColumn(ctx, tx, d, table, c.Column.Name)
	case KindAddIndex, KindAddUnique:
		return d.HasIndex(ctx, tx, table, c.indexName())
	}
	return false, nil
}
