package shard

import "strings"

// DefaultSeparator joins a base table name to a shard suffix.
const DefaultSeparator = "_"

// Naming is the convention that maps (base table, suffix) to a physical
// table name and back. The zero value uses DefaultSeparator.
type Naming struct {
	Separator string
}

func (n Naming) sep() string {
	if n.Separator == "" {
		return DefaultSeparator
	}
	return n.Separator
}

// PhysicalName returns the shard table name for base and suffix.
// An empty suffix resolves to the base table itself.
func (n Naming) PhysicalName(base, suffix string) string {
	if suffix == "" {
		return base
	}
	return base + n.sep() + suffix
}

// SuffixOf reports the suffix under which table would be a shard of base,
// and whether it is one. The base table itself is not a shard of itself.
func (n Naming) SuffixOf(base, table string) (string, bool) {
	rest, ok := strings.CutPrefix(table, base+n.sep())
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// Prefix returns the catalog search prefix for base's shards.
func (n Naming) Prefix(base string) string {
	return base + n.sep()
}
