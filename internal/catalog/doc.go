// Package catalog provides read access to a database's own table catalog and
// renders the engine-specific SQL the rest of the system executes, behind a
// single Dialect interface so the sharding logic stays engine-neutral.
//
// # Overview
//
// The catalog is the ultimate source of truth for which tables exist: shard
// membership is never persisted anywhere else, it is always re-derived by
// asking the engine which tables match the shard naming convention. This
// package answers those questions (ListTables, TableExists, Columns,
// HasIndex) and produces the DDL strings (clone, add/drop/alter column,
// index management) that the cloner and the schema-change applicator run.
//
// # Architecture
//
//	┌──────────────────────────────┐
//	│  cloner / propagate / shard  │
//	└──────────────────────────────┘
//	               │
//	               ▼
//	┌──────────────────────────────┐
//	│       Catalog (db + Dialect) │
//	└──────────────────────────────┘
//	         │            │
//	         ▼            ▼
//	   ┌─────────┐  ┌─────────┐
//	   │ SQLite  │  │  MySQL  │
//	   │ dialect │  │ dialect │
//	   └─────────┘  └─────────┘
//
// # Dialects
//
// SQLite reads sqlite_master and table_info pragmas; it is the dialect every
// test in this module runs against. MySQL uses INFORMATION_SCHEMA and
// CREATE TABLE ... LIKE. Both render identifiers through QuoteIdent, never
// through raw string concatenation of user input.
//
// Dialect methods that an engine genuinely cannot express (for example
// changing a column's type in place on SQLite) return ErrUnsupported rather
// than guessing at a lossy table rebuild.
package catalog
