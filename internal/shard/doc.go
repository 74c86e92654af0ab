// Package shard defines the shard naming convention, the error taxonomy
// shared by every component, and the Registry that tracks which shard tables
// exist for a base table.
//
// # Naming
//
// A shard table's physical name is the base table name, the separator
// (default "_"), and an opaque suffix: base "person", suffix "1" is
// "person_1". Suffixes carry no meaning beyond uniqueness per base table;
// numeric strings are the common case but any identifier-safe string works.
//
// # Registry
//
// The Registry is derived state. The database's own catalog is the single
// source of truth for shard existence, and every observing call (ListShards,
// ShardExists) re-derives its answer from the catalog, so a shard table
// created or dropped by another process — or dropped directly in the
// database — is reflected on the very next call. The in-memory cache exists
// only to serve Known() without a round trip and is never trusted for
// existence decisions.
//
// # Concurrency
//
// The Registry's cache is protected by an RWMutex and returns copies; the
// database calls themselves carry whatever isolation the engine provides.
// No other locking is done anywhere in this module.
package shard
