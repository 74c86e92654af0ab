// Package cloner creates shard tables. CopyTable is the only way a shard
// table comes into existence in this module: cloning is always explicit,
// never triggered implicitly by propagation or queries, and never
// overwrites an existing table.
//
// A clone runs as one transaction covering the schema DDL and the optional
// row copy, so a failure partway leaves no half-created table behind and
// retrying is always safe. That guarantee is real on engines with
// transactional DDL (SQLite, PostgreSQL); MySQL commits DDL implicitly, and
// there a failed clone can leave the bare target table to drop manually.
package cloner
