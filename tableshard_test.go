package tableshard_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/tableshard"
)

func newSharder(t *testing.T) (*sql.DB, *tableshard.Sharder) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, tableshard.New(db, tableshard.SQLite())
}

func mustExec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "exec %s", stmt)
	}
}

func rowCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM "+table).Scan(&n))
	return n
}

// TestShardingLifecycle walks the whole surface the way an application
// would: clone shards, route writes, migrate the base, propagate, and
// observe the registry follow the catalog.
func TestShardingLifecycle(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db,
		`CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT)`,
		`INSERT INTO person (name, email) VALUES ('ada', 'ada@x'), ('bob', 'bob@x')`,
	)

	// Create three shards, one carrying the base's rows.
	require.NoError(t, s.CopyTable(ctx, "person", "person_1", true))
	require.NoError(t, s.CopyTable(ctx, "person", "person_2", false))
	require.NoError(t, s.CopyTable(ctx, "person", "person_3", false))

	assert.Equal(t, rowCount(t, db, "person"), rowCount(t, db, "person_1"),
		"copy_data clone must match the source row count")

	shards, err := s.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, shards)

	// Route writes per call; no shard parameter means the base table.
	require.NoError(t, s.Insert(ctx, "person", "2", map[string]any{"name": "eve"}))
	require.NoError(t, s.Insert(ctx, "person", "", map[string]any{"name": "mal"}))
	assert.Equal(t, 1, rowCount(t, db, "person_2"))
	assert.Equal(t, 3, rowCount(t, db, "person"))

	// The host migrates the base table, then hands the change over.
	age := tableshard.Column{Name: "age", Type: "INTEGER", Nullable: true}
	mustExec(t, db, `ALTER TABLE person ADD COLUMN age INTEGER`)
	require.NoError(t, s.Run(ctx, tableshard.ChangeSet{
		Base: "person",
		Ops:  []tableshard.Change{tableshard.AddColumn(age)},
	}))

	baseCols, err := s.Columns(ctx, "person")
	require.NoError(t, err)
	for _, suffix := range []string{"1", "2", "3"} {
		cols, err := s.Columns(ctx, "person_"+suffix)
		require.NoError(t, err)
		assert.Equal(t, baseCols, cols, "shard %s must match the base schema", suffix)
	}
}

// TestResolveTableConvention pins the conventional physical name and the
// unknown-shard failure.
func TestResolveTableConvention(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY)`)
	require.NoError(t, s.CopyTable(ctx, "person", "person_1", false))

	name, err := s.ResolveTable(ctx, "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "person_1", name)

	_, err = s.ResolveTable(ctx, "person", "2")
	assert.ErrorIs(t, err, tableshard.ErrUnknownShard)
}

// TestRegistryFollowsCatalog drops a shard table directly in the database
// and verifies the registry self-heals on the next call.
func TestRegistryFollowsCatalog(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY)`)
	require.NoError(t, s.CopyTable(ctx, "person", "person_1", false))
	require.NoError(t, s.CopyTable(ctx, "person", "person_2", false))

	mustExec(t, db, `DROP TABLE person_2`)

	exists, err := s.ShardExists(ctx, "person", "2")
	require.NoError(t, err)
	assert.False(t, exists)

	shards, err := s.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, shards)

	_, err = s.ResolveTable(ctx, "person", "2")
	assert.ErrorIs(t, err, tableshard.ErrUnknownShard)
}

// TestCloneErrorTaxonomy checks the exported sentinels match the failure
// modes.
func TestCloneErrorTaxonomy(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY)`)

	err := s.CopyTable(ctx, "ghost", "ghost_1", false)
	assert.ErrorIs(t, err, tableshard.ErrSourceNotFound)

	require.NoError(t, s.CopyTable(ctx, "person", "person_1", false))
	err = s.CopyTable(ctx, "person", "person_1", false)
	assert.ErrorIs(t, err, tableshard.ErrTargetExists)
}

// TestPartialPropagation verifies the exported PartialError shape on a
// mixed outcome.
func TestPartialPropagation(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY, email TEXT)`)
	for _, suffix := range []string{"1", "2", "3"} {
		require.NoError(t, s.CopyTable(ctx, "person", "person_"+suffix, false))
	}
	mustExec(t, db, `INSERT INTO person_2 (email) VALUES ('dup@x'), ('dup@x')`)

	err := s.Propagate(ctx, "person", tableshard.AddUnique("email"))
	require.Error(t, err)

	var perr *tableshard.PartialError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"1", "3"}, perr.Succeeded)
	require.Len(t, perr.Failed, 1)
	assert.Equal(t, "2", perr.Failed[0].Suffix)
}

// TestCustomSeparator verifies the naming convention option end to end.
func TestCustomSeparator(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := tableshard.New(db, tableshard.SQLite(), tableshard.WithSeparator("__"))

	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY)`)
	require.NoError(t, s.CopyTable(ctx, "person", "person__eu", false))

	name, err := s.ResolveTable(ctx, "person", "eu")
	require.NoError(t, err)
	assert.Equal(t, "person__eu", name)

	shards, err := s.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"eu"}, shards)
}

// TestBulkInsertFacade routes a chunked bulk write through the facade.
func TestBulkInsertFacade(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE event (id INTEGER PRIMARY KEY, kind TEXT, at TEXT)`)
	require.NoError(t, s.CopyTable(ctx, "event", "event_2024", false))

	rows := [][]any{
		{"signup", "2024-01-01"},
		{"login", "2024-01-02"},
		{"logout", "2024-01-02"},
	}
	require.NoError(t, s.BulkInsert(ctx, "event", "2024",
		[]string{"kind", "at"}, rows, tableshard.BulkOptions{BatchSize: 2}))
	assert.Equal(t, 3, rowCount(t, db, "event_2024"))
	assert.Equal(t, 0, rowCount(t, db, "event"))
}

// TestUnsupportedSurfaces verifies ErrUnsupported reaches the caller
// through a propagation attempt.
func TestUnsupportedSurfaces(t *testing.T) {
	ctx := context.Background()
	db, s := newSharder(t)
	mustExec(t, db, `CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, s.CopyTable(ctx, "person", "person_1", false))

	err := s.Propagate(ctx, "person",
		tableshard.AlterColumn(tableshard.Column{Name: "name", Type: "BLOB"}))
	assert.True(t, errors.Is(err, tableshard.ErrUnsupported))
}
