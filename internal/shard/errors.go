package shard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceNotFound is returned when a clone is requested from a table that
// does not exist.
var ErrSourceNotFound = errors.New("source table not found")

// ErrTargetExists is returned when a clone target already exists. Cloning
// never overwrites.
var ErrTargetExists = errors.New("target table already exists")

// ErrUnknownShard is returned when a query names a shard suffix that has no
// table behind it.
var ErrUnknownShard = errors.New("unknown shard")

// ShardError records the failure of a single shard during propagation.
type ShardError struct {
	Suffix string
	Err    error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("shard %s: %v", e.Suffix, e.Err)
}

func (e *ShardError) Unwrap() error { return e.Err }

// PartialError reports a propagation that failed on one or more shards
// after every shard was attempted. Shards listed in Succeeded have the
// change applied; shards in Failed do not, and the operator must reconcile
// before re-running.
type PartialError struct {
	Base      string        // Base table the change was propagated for
	Succeeded []string      // Suffixes that received the change
	Failed    []*ShardError // Per-shard failures
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "propagate %s: %d of %d shards failed",
		e.Base, len(e.Failed), len(e.Failed)+len(e.Succeeded))
	for _, f := range e.Failed {
		b.WriteString("; ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the per-shard causes to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
