package matchtree

import "github.com/funvibe/octet/internal/format"

// partition is one elementary, disjoint sub-range of byte space and
// the pending (idx, continuation) entries whose original byte-set
// covers it — spec.md §4.3's "common bytes carry the accumulated
// (index, continuation) forward; disjoint remainder forms a new
// branch".
type partition struct {
	set     format.ByteSet
	entries []pending
}

// partitionByteOutcomes refines a node's accumulated byte outcomes
// into disjoint byte sets such that every byte within one set is
// covered by exactly the same set of byte outcomes (two partitions may
// still carry the same alternative indices). Each outcome's set is refined against the partitions
// built from the outcomes before it: the part it shares with an
// existing partition carries that partition's entries forward plus
// its own (the "common bytes" case), the part of the existing
// partition it does not touch is kept as is (the "disjoint
// remainder"), and whatever is left of the outcome's own set after
// every existing partition has been checked becomes a new partition.
func partitionByteOutcomes(outcomes []byteOutcome) []partition {
	var parts []partition
	for _, o := range outcomes {
		var next []partition
		var covered format.ByteSet
		for _, p := range parts {
			if common := p.set.Intersect(o.set); !common.IsEmpty() {
				entries := make([]pending, len(p.entries)+1)
				copy(entries, p.entries)
				entries[len(p.entries)] = pending{idx: o.idx, cont: o.next}
				next = append(next, partition{set: common, entries: entries})
				covered = covered.Union(common)
			}
			if remainder := p.set.Subtract(o.set); !remainder.IsEmpty() {
				next = append(next, partition{set: remainder, entries: p.entries})
			}
		}
		if leftover := o.set.Subtract(covered); !leftover.IsEmpty() {
			next = append(next, partition{set: leftover, entries: []pending{{idx: o.idx, cont: o.next}}})
		}
		parts = next
	}
	// Adjacent partitions are deliberately not coalesced even when
	// their contributor indices match: a Continuation holds a Format,
	// whose variants embed slices, so Continuation values are not
	// comparable in Go without risking a runtime panic on ==. Each
	// elementary range gets its own branch; this costs a slightly
	// larger tree; it does not change what Lookup computes.
	return parts
}
