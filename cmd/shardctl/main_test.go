package main

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a database file with a base table and returns its path.
func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	return path
}

// TestRunCloneListResolve drives the clone/list/exists/resolve commands
// against a real database file.
func TestRunCloneListResolve(t *testing.T) {
	path := newTestDB(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-db", path, "clone", "person", "person_1"}, &out))
	assert.Contains(t, out.String(), "cloned person -> person_1")

	out.Reset()
	require.NoError(t, run([]string{"-db", path, "clone", "person", "person_2"}, &out))

	out.Reset()
	require.NoError(t, run([]string{"-db", path, "list", "person"}, &out))
	assert.Equal(t, "1\n2\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"-db", path, "exists", "person", "1"}, &out))
	assert.Equal(t, "true\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"-db", path, "exists", "person", "9"}, &out))
	assert.Equal(t, "false\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"-db", path, "resolve", "person", "2"}, &out))
	assert.Equal(t, "person_2\n", out.String())
}

// TestRunErrors covers argument validation without touching a database.
func TestRunErrors(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{}, &out)
	assert.ErrorContains(t, err, "missing command")

	err = run([]string{"list", "person"}, &out)
	assert.ErrorContains(t, err, "no database given")

	path := newTestDB(t)
	err = run([]string{"-db", path, "frobnicate"}, &out)
	assert.ErrorContains(t, err, "unknown command")

	err = run([]string{"-db", path, "list"}, &out)
	assert.ErrorContains(t, err, "usage: list")

	err = run([]string{"-db", path, "resolve", "person", "1"}, &out)
	assert.ErrorContains(t, err, "unknown shard")
}
