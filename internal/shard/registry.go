package shard

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"
)

// TableLister is the slice of catalog access the Registry depends on.
type TableLister interface {
	// Tables returns all table names starting with prefix.
	Tables(ctx context.Context, prefix string) ([]string, error)

	// TableExists reports whether the named table exists.
	TableExists(ctx context.Context, name string) (bool, error)
}

// Registry tracks the shard suffixes known to exist for each base table.
//
// Existence answers always come from the catalog; the cache is refreshed as
// a side effect and only read directly by Known. Any table named
// base+separator+suffix counts as a shard of base, exactly as the catalog
// sees it — operators picking table names own avoiding collisions between a
// base's shards and unrelated tables sharing its prefix.
type Registry struct {
	lister TableLister
	naming Naming

	mu    sync.RWMutex               // Protects cache
	cache map[string]map[string]bool // base -> set of suffixes
}

// NewRegistry creates a Registry reading through lister with the given
// naming convention.
func NewRegistry(lister TableLister, naming Naming) *Registry {
	return &Registry{
		lister: lister,
		naming: naming,
		cache:  make(map[string]map[string]bool),
	}
}

// Naming returns the registry's naming convention.
func (r *Registry) Naming() Naming { return r.naming }

// ListShards returns the suffixes of all existing shard tables of base,
// sorted ascending. The answer is re-derived from the catalog on every
// call, so shards created or dropped by other processes are reflected
// immediately.
func (r *Registry) ListShards(ctx context.Context, base string) ([]string, error) {
	tables, err := r.lister.Tables(ctx, r.naming.Prefix(base))
	if err != nil {
		return nil, err
	}

	suffixes := make(map[string]bool, len(tables))
	for _, table := range tables {
		if suffix, ok := r.naming.SuffixOf(base, table); ok {
			suffixes[suffix] = true
		}
	}

	r.mu.Lock()
	r.cache[base] = suffixes
	r.mu.Unlock()

	out := make([]string, 0, len(suffixes))
	for suffix := range suffixes {
		out = append(out, suffix)
	}
	slices.Sort(out)
	return out, nil
}

// ShardExists reports whether a shard table for suffix exists, by asking
// the catalog. A shard dropped out of band yields false, not an error.
func (r *Registry) ShardExists(ctx context.Context, base, suffix string) (bool, error) {
	if suffix == "" {
		return false, nil
	}
	exists, err := r.lister.TableExists(ctx, r.naming.PhysicalName(base, suffix))
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	set, ok := r.cache[base]
	if !ok {
		set = make(map[string]bool)
		r.cache[base] = set
	}
	if exists {
		set[suffix] = true
	} else {
		delete(set, suffix)
	}
	r.mu.Unlock()

	return exists, nil
}

// Register records a suffix in the cache. Registering a known suffix is a
// no-op. The catalog remains authoritative: registration does not create a
// table, and a registered suffix whose table is missing still reports
// false from ShardExists.
func (r *Registry) Register(base, suffix string) {
	if suffix == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.cache[base]
	if !ok {
		set = make(map[string]bool)
		r.cache[base] = set
	}
	set[suffix] = true
}

// Known returns the cached suffixes for base, sorted ascending, without
// touching the catalog. Purely a performance convenience; use ListShards
// anywhere staleness matters.
func (r *Registry) Known(base string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.cache[base]))
	for suffix := range r.cache[base] {
		out = append(out, suffix)
	}
	slices.Sort(out)
	return out
}
