// Package tableshard splits the storage of selected tables into multiple
// physically separate tables within the same database, addressed by a shard
// suffix, while keeping every shard's schema identical to its source table.
//
// Shards are ordinary tables named base+"_"+suffix, created explicitly with
// CopyTable and discovered from the database catalog, which stays the
// single source of truth for shard membership. After the host's own schema
// migration touches a base table, hand the applied changes to Propagate (or
// a Runner) and they are replayed onto every shard.
//
//	db, _ := sql.Open("sqlite3", "app.db")
//	s := tableshard.New(db, tableshard.SQLite())
//
//	_ = s.CopyTable(ctx, "person", "person_1", false)
//	_ = s.Insert(ctx, "person", "1", map[string]any{"name": "ada"})
//	_ = s.Propagate(ctx, "person",
//	    tableshard.AddColumn(tableshard.Column{Name: "age", Type: "INTEGER", Nullable: true}))
package tableshard

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dreamware/tableshard/internal/catalog"
	"github.com/dreamware/tableshard/internal/cloner"
	"github.com/dreamware/tableshard/internal/propagate"
	"github.com/dreamware/tableshard/internal/redirect"
	"github.com/dreamware/tableshard/internal/shard"
)

// Errors reported by sharding operations; match with errors.Is / errors.As.
var (
	ErrSourceNotFound = shard.ErrSourceNotFound
	ErrTargetExists   = shard.ErrTargetExists
	ErrUnknownShard   = shard.ErrUnknownShard
	ErrUnsupported    = catalog.ErrUnsupported
)

// PartialError reports a propagation that failed on some shards after all
// were attempted.
type PartialError = shard.PartialError

// ShardError is one shard's failure inside a PartialError.
type ShardError = shard.ShardError

// Column describes a column for schema changes.
type Column = catalog.Column

// Change is a structured schema change; build one with AddColumn and the
// other constructors.
type Change = propagate.Change

// ChangeSource feeds a migration run's changes to Run; ChangeSet is a
// ready-made implementation.
type (
	ChangeSource = propagate.ChangeSource
	ChangeSet    = propagate.ChangeSet
)

// Dialect is the engine-specific SQL surface; SQLite and MySQL are provided.
type Dialect = catalog.Dialect

// Change constructors, re-exported for single-import use.
var (
	AddColumn    = propagate.AddColumn
	DropColumn   = propagate.DropColumn
	RenameColumn = propagate.RenameColumn
	AlterColumn  = propagate.AlterColumn
	SetDefault   = propagate.SetDefault
	AddIndex     = propagate.AddIndex
	DropIndex    = propagate.DropIndex
	AddUnique    = propagate.AddUnique
	DropUnique   = propagate.DropUnique
)

// SQLite returns the SQLite dialect.
func SQLite() Dialect { return catalog.SQLite() }

// MySQL returns the MySQL dialect.
func MySQL() Dialect { return catalog.MySQL() }

// BulkOptions tunes BulkInsert.
type BulkOptions = redirect.BulkOptions

// Option configures a Sharder.
type Option func(*config)

type config struct {
	separator string
	logger    *slog.Logger
}

// WithSeparator changes the string joining base names to suffixes
// (default "_").
func WithSeparator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Sharder ties the registry, cloner, applicator, and redirector together
// over one database handle. Safe for concurrent use; all coordination is
// left to the database's transaction isolation.
type Sharder struct {
	catalog    *catalog.Catalog
	registry   *shard.Registry
	cloner     *cloner.Cloner
	applicator *propagate.Applicator
	runner     *propagate.Runner
	redirector *redirect.Redirector
}

// New creates a Sharder over db speaking the given dialect.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Sharder {
	cfg := config{separator: shard.DefaultSeparator, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cat := catalog.New(db, dialect)
	naming := shard.Naming{Separator: cfg.separator}
	registry := shard.NewRegistry(cat, naming)
	applicator := propagate.NewApplicator(db, cat, registry, cfg.logger)

	return &Sharder{
		catalog:    cat,
		registry:   registry,
		cloner:     cloner.New(db, cat, registry, cfg.logger),
		applicator: applicator,
		runner:     propagate.NewRunner(applicator, cfg.logger),
		redirector: redirect.New(db, registry, dialect),
	}
}

// CopyTable clones source's schema (and rows, when copyData is true) into a
// new table named target, atomically. Fails with ErrSourceNotFound or
// ErrTargetExists. When target follows the shard naming convention it is
// registered as a shard of source.
func (s *Sharder) CopyTable(ctx context.Context, source, target string, copyData bool) error {
	return s.cloner.CopyTable(ctx, source, target, copyData)
}

// ListShards returns the suffixes of all existing shards of base, sorted,
// re-derived from the database catalog on every call.
func (s *Sharder) ListShards(ctx context.Context, base string) ([]string, error) {
	return s.registry.ListShards(ctx, base)
}

// ShardExists reports whether base has a shard table for suffix, asking
// the catalog directly.
func (s *Sharder) ShardExists(ctx context.Context, base, suffix string) (bool, error) {
	return s.registry.ShardExists(ctx, base, suffix)
}

// Register records a suffix as known without touching the database.
// Idempotent; the catalog remains authoritative.
func (s *Sharder) Register(base, suffix string) {
	s.registry.Register(base, suffix)
}

// ResolveTable returns the physical table name for base and suffix. Empty
// suffix means the base table. Fails with ErrUnknownShard when no such
// shard table exists.
func (s *Sharder) ResolveTable(ctx context.Context, base, suffix string) (string, error) {
	return s.redirector.ResolveTable(ctx, base, suffix)
}

// Propagate replays changes, in order, onto every shard of base. All
// shards are attempted; per-shard failures are collected into a
// *PartialError. Zero shards is a no-op success.
func (s *Sharder) Propagate(ctx context.Context, base string, changes ...Change) error {
	return s.applicator.Propagate(ctx, base, changes...)
}

// Run is the post-migration hook: it propagates each source's changes to
// its base table's shards, stopping at the first source that fails.
func (s *Sharder) Run(ctx context.Context, sources ...ChangeSource) error {
	return s.runner.Run(ctx, sources...)
}

// Insert writes one row into the shard named by suffix; empty suffix
// writes to the base table.
func (s *Sharder) Insert(ctx context.Context, base, suffix string, row map[string]any) error {
	return s.redirector.Insert(ctx, base, suffix, row)
}

// BulkInsert writes rows in batches into the shard named by suffix.
func (s *Sharder) BulkInsert(ctx context.Context, base, suffix string, columns []string, rows [][]any, opts BulkOptions) error {
	return s.redirector.BulkInsert(ctx, base, suffix, columns, rows, opts)
}

// Query runs SELECT * against the shard named by suffix, with an optional
// WHERE clause.
func (s *Sharder) Query(ctx context.Context, base, suffix, where string, args ...any) (*sql.Rows, error) {
	return s.redirector.Query(ctx, base, suffix, where, args...)
}

// Columns returns base's (or a shard's) column definitions from the
// catalog.
func (s *Sharder) Columns(ctx context.Context, table string) ([]Column, error) {
	return s.catalog.Columns(ctx, table)
}
