package shard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister simulates the database catalog with a mutable table set, so
// tests can drop tables "out of band" between registry calls.
type fakeLister struct {
	mu     sync.Mutex
	tables map[string]bool
	err    error
}

func newFakeLister(tables ...string) *fakeLister {
	f := &fakeLister{tables: make(map[string]bool)}
	for _, t := range tables {
		f.tables[t] = true
	}
	return f
}

func (f *fakeLister) drop(table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tables, table)
}

func (f *fakeLister) Tables(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for table := range f.tables {
		if strings.HasPrefix(table, prefix) {
			out = append(out, table)
		}
	}
	return out, nil
}

func (f *fakeLister) TableExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.tables[name], nil
}

// TestRegistryListShards verifies that ListShards mirrors the catalog,
// sorted, with the base table excluded.
func TestRegistryListShards(t *testing.T) {
	ctx := context.Background()
	lister := newFakeLister("person", "person_2", "person_1", "person_10", "invoice_1")
	registry := NewRegistry(lister, Naming{})

	shards, err := registry.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10", "2"}, shards)

	shards, err = registry.ListShards(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, shards)

	shards, err = registry.ListShards(ctx, "order")
	require.NoError(t, err)
	assert.Empty(t, shards)
}

// TestRegistrySelfHeals verifies that a shard table dropped directly in the
// database disappears from the registry on the next observing call, and
// that ShardExists reports false rather than failing.
func TestRegistrySelfHeals(t *testing.T) {
	ctx := context.Background()
	lister := newFakeLister("person", "person_1", "person_2")
	registry := NewRegistry(lister, Naming{})

	shards, err := registry.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, shards)

	// Drop person_2 behind the registry's back.
	lister.drop("person_2")

	exists, err := registry.ShardExists(ctx, "person", "2")
	require.NoError(t, err)
	assert.False(t, exists, "dropped shard must report not-exists, not error")

	shards, err = registry.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, shards)
	assert.Equal(t, []string{"1"}, registry.Known("person"), "cache must follow the catalog")
}

// TestRegistryRegisterIdempotent verifies set semantics for Register.
func TestRegistryRegisterIdempotent(t *testing.T) {
	lister := newFakeLister("person", "person_1")
	registry := NewRegistry(lister, Naming{})

	registry.Register("person", "1")
	registry.Register("person", "1")
	registry.Register("person", "1")

	assert.Equal(t, []string{"1"}, registry.Known("person"))

	// Registering the empty suffix is ignored; the base is not a shard.
	registry.Register("person", "")
	assert.Equal(t, []string{"1"}, registry.Known("person"))
}

// TestRegistryCacheNotAuthoritative verifies that a registered suffix with
// no table behind it still reports not-exists.
func TestRegistryCacheNotAuthoritative(t *testing.T) {
	ctx := context.Background()
	lister := newFakeLister("person")
	registry := NewRegistry(lister, Naming{})

	registry.Register("person", "9")

	exists, err := registry.ShardExists(ctx, "person", "9")
	require.NoError(t, err)
	assert.False(t, exists)

	shards, err := registry.ListShards(ctx, "person")
	require.NoError(t, err)
	assert.Empty(t, shards)
}

// TestRegistryPropagatesCatalogErrors verifies that catalog failures
// surface as-is instead of being masked by the cache.
func TestRegistryPropagatesCatalogErrors(t *testing.T) {
	ctx := context.Background()
	lister := newFakeLister("person", "person_1")
	registry := NewRegistry(lister, Naming{})

	catalogErr := errors.New("connection lost")
	lister.err = catalogErr

	_, err := registry.ListShards(ctx, "person")
	assert.ErrorIs(t, err, catalogErr)

	_, err = registry.ShardExists(ctx, "person", "1")
	assert.ErrorIs(t, err, catalogErr)
}
