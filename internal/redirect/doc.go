// Package redirect points reads and writes at a specific shard's table.
//
// The shard is always an explicit per-call parameter, never ambient state:
// there is no "current shard" to leak between concurrent callers. An empty
// suffix targets the base table itself, so unsharded code paths behave
// exactly as if this module were absent. Resolving a suffix that has no
// table behind it fails with shard.ErrUnknownShard; shards are only ever
// created explicitly through the cloner.
package redirect
