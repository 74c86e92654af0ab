// Package propagate replays schema changes computed for a base table onto
// every shard table cloned from it.
//
// # Overview
//
// The host migration framework owns deciding what changed and applying it
// to the base table. This package picks up afterwards: given the same
// changes as structured Change values, the Applicator enumerates the base's
// shards through the registry and reissues each change against each shard's
// table, substituting the target table name. Multi-step changes are applied
// in exactly the order they were generated for the base. Index names are
// additionally rewritten per shard (person_age_idx on the base becomes
// person_1_age_idx on shard 1), since index names are database-global on
// some engines and cannot repeat across shard tables.
//
// # Failure policy
//
// Each shard is its own transaction. A failure on one shard never stops the
// remaining shards from being attempted: after all shards have been tried,
// a shard.PartialError reports every (suffix, error) pair while the shards
// that succeeded keep their applied change. Partial failure is observable
// and actionable, never silent. No cross-shard atomicity exists; a host
// that needs strict consistency across shards must serialize its migration
// runs.
//
// # Hook point
//
// Runner is the post-migration hook: the host hands it ChangeSources (one
// per migrated base table, changes in applied order) after its own
// migration run finishes, and the Runner propagates each in turn.
package propagate
