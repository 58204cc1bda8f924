// Package snapshot holds the sparse, append-only snapshot index a query
// binary-searches to turn a random time query into a bounded-work replay.
package snapshot

import (
	"sort"

	"github.com/readm/vcdtrace/statestore"
)

// Interval is the target byte distance between consecutive snapshots
// during indexing: memory grows with file size, not simulated time.
const Interval = 10 * 1024 * 1024

// Snapshot is the recorded state at the boundary of a timestamp line.
// Time is the current time when the snapshot was taken and State holds
// every value change before that boundary. FileOffset is the absolute
// byte offset of the "#<time>" line that advances the clock past Time
// (the end of the trace for the final snapshot); replaying from
// FileOffset applies exactly the value changes State does not yet hold.
type Snapshot struct {
	Time       uint64
	FileOffset int64
	State      *statestore.Store
}

// Index is the ordered, append-only vector of Snapshots produced during
// indexing. Appends must be strictly increasing in both Time and
// FileOffset.
type Index struct {
	entries []Snapshot
}

// NewIndex returns an empty snapshot index.
func NewIndex() *Index {
	return &Index{}
}

// Append adds a new snapshot. The caller is responsible for the
// monotonicity invariant (spec.md §8 invariant 1); Append does not
// re-validate it on the hot indexing path.
func (ix *Index) Append(s Snapshot) {
	if ix == nil {
		return
	}
	ix.entries = append(ix.entries, s)
}

// Len returns the number of recorded snapshots.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// At returns the snapshot at position i.
func (ix *Index) At(i int) (Snapshot, bool) {
	if ix == nil || i < 0 || i >= len(ix.entries) {
		return Snapshot{}, false
	}
	return ix.entries[i], true
}

// Last returns the most recently appended snapshot.
func (ix *Index) Last() (Snapshot, bool) {
	if ix == nil || len(ix.entries) == 0 {
		return Snapshot{}, false
	}
	return ix.entries[len(ix.entries)-1], true
}

// Lookup performs a binary search for the largest k with
// entries[k].Time <= startTime, clamped to 0. It returns false only when
// the index is empty.
func (ix *Index) Lookup(startTime uint64) (int, bool) {
	if ix == nil || len(ix.entries) == 0 {
		return 0, false
	}
	// sort.Search finds the first index for which the predicate holds;
	// we want the last index whose Time is <= startTime, so search for
	// the first index whose Time is > startTime and step back one.
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Time > startTime
	})
	if i == 0 {
		return 0, true
	}
	return i - 1, true
}

// ClampSnapshotIndex validates a caller-supplied snapshot index against
// the current index, per the InvalidQuery error kind: out-of-range
// indices are clamped to the nearest valid snapshot rather than rejected.
func (ix *Index) ClampSnapshotIndex(i int) int {
	if ix == nil || len(ix.entries) == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= len(ix.entries) {
		return len(ix.entries) - 1
	}
	return i
}

// Reset clears the index, for begin_indexing's idempotent-reopen
// requirement.
func (ix *Index) Reset() {
	if ix == nil {
		return
	}
	ix.entries = nil
}
