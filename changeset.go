package liveset

// Range is a half-open index interval [From, To).
type Range struct {
	From int
	To   int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.To - r.From
}

// RangeChanges is the raw notification payload produced by a backing
// collection: each category as a list of non-overlapping, ascending
// half-open index ranges.
//
// Insertions and NewModifications index into the post-change collection;
// Deletions and OldModifications index into the pre-change collection.
type RangeChanges struct {
	Insertions       []Range
	Deletions        []Range
	OldModifications []Range
	NewModifications []Range
}

// ChangeSet is the flattened index delta for one notification cycle.
// Each list is strictly ascending with no duplicates.
type ChangeSet struct {
	Insertions       []int
	Deletions        []int
	OldModifications []int
	NewModifications []int
}

// IsEmpty reports whether the change set carries no indices at all.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.Insertions) == 0 &&
		len(cs.Deletions) == 0 &&
		len(cs.OldModifications) == 0 &&
		len(cs.NewModifications) == 0
}

// ExpandRanges flattens ascending non-overlapping half-open ranges into the
// ascending sequence of covered indices: [[0,3],[5,6]] becomes [0 1 2 5].
//
// Ranges are trusted to be non-overlapping and ascending. No validation or
// deduplication is performed.
func ExpandRanges(ranges []Range) []int {
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	out := make([]int, 0, total)
	for _, r := range ranges {
		for i := r.From; i < r.To; i++ {
			out = append(out, i)
		}
	}
	return out
}

// Expand translates the compact run-length payload into a flat ChangeSet.
func (rc RangeChanges) Expand() ChangeSet {
	return ChangeSet{
		Insertions:       ExpandRanges(rc.Insertions),
		Deletions:        ExpandRanges(rc.Deletions),
		OldModifications: ExpandRanges(rc.OldModifications),
		NewModifications: ExpandRanges(rc.NewModifications),
	}
}

// CoalesceIndices compacts a strictly ascending index sequence into the
// minimal list of half-open ranges. It is the inverse of ExpandRanges and
// is used by backing collections to produce the compact payload.
func CoalesceIndices(indices []int) []Range {
	var out []Range
	for _, i := range indices {
		if n := len(out); n > 0 && out[n-1].To == i {
			out[n-1].To = i + 1
			continue
		}
		out = append(out, Range{From: i, To: i + 1})
	}
	return out
}
