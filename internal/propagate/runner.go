package propagate

import (
	"context"
	"fmt"
	"log/slog"
)

// ChangeSource supplies the schema changes one migration run applied to one
// base table, in the order the DDL was generated. The host migration
// framework implements this (or uses ChangeSet) and hands its sources to
// Runner.Run after its own migration has been applied to the base tables.
type ChangeSource interface {
	// BaseTable names the table the changes were computed for.
	BaseTable() string

	// Changes returns the applied changes in application order.
	Changes() []Change
}

// ChangeSet is a ready-made ChangeSource.
type ChangeSet struct {
	Base string
	Ops  []Change
}

func (s ChangeSet) BaseTable() string { return s.Base }
func (s ChangeSet) Changes() []Change { return s.Ops }

// Runner is the post-migration hook point: it propagates each source's
// changes to that base table's shards.
type Runner struct {
	applicator *Applicator
	logger     *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default().
func NewRunner(applicator *Applicator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{applicator: applicator, logger: logger}
}

// Run propagates every source in order. The first source that fails aborts
// the run; its error (a *shard.PartialError for per-shard failures) lists
// which shards succeeded and which did not, so an operator can reconcile
// before re-running. Sources already propagated keep their changes, and
// re-running is safe because additive changes already present on a shard
// are skipped.
func (r *Runner) Run(ctx context.Context, sources ...ChangeSource) error {
	for _, source := range sources {
		base := source.BaseTable()
		changes := source.Changes()
		if len(changes) == 0 {
			continue
		}
		r.logger.Info("migrating shards", "base", base, "changes", len(changes))
		if err := r.applicator.Propagate(ctx, base, changes...); err != nil {
			return fmt.Errorf("migrate shards of %s: %w", base, err)
		}
	}
	return nil
}
