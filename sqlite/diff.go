package sqlite

import (
	"github.com/rowanvale/liveset"
)

// diffRows computes the range-encoded delta between two orderings of the
// same result set, attributing changes by row identity.
//
// Deletions and old-modifications index into oldRows; insertions and
// new-modifications index into newRows. A row present in both orderings
// counts as modified only when its column values differ; a pure position
// shift is implied by neighboring insertions and deletions and is not
// reported.
func diffRows(oldRows, newRows []row) liveset.RangeChanges {
	oldByID := make(map[int64]int, len(oldRows))
	for i, r := range oldRows {
		oldByID[r.id] = i
	}
	newByID := make(map[int64]int, len(newRows))
	for i, r := range newRows {
		newByID[r.id] = i
	}

	var deletions, oldMods []int
	for i, r := range oldRows {
		j, present := newByID[r.id]
		if !present {
			deletions = append(deletions, i)
			continue
		}
		if !valuesEqual(r.values, newRows[j].values) {
			oldMods = append(oldMods, i)
		}
	}

	var insertions, newMods []int
	for j, r := range newRows {
		i, present := oldByID[r.id]
		if !present {
			insertions = append(insertions, j)
			continue
		}
		if !valuesEqual(oldRows[i].values, r.values) {
			newMods = append(newMods, j)
		}
	}

	return liveset.RangeChanges{
		Insertions:       liveset.CoalesceIndices(insertions),
		Deletions:        liveset.CoalesceIndices(deletions),
		OldModifications: liveset.CoalesceIndices(oldMods),
		NewModifications: liveset.CoalesceIndices(newMods),
	}
}

// valuesEqual reports whether two decoded column-value slices match.
func valuesEqual(a, b []liveset.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !liveset.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
