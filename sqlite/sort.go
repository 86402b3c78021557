package sqlite

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rowanvale/liveset"
)

// sortKey is one resolved descriptor: the column index to compare and the
// direction.
type sortKey struct {
	index     int
	ascending bool
}

// sortRows orders rows in place by the set's descriptors. Identity order
// is the tiebreak, so equal keys keep insertion order. Null sorts before
// every non-null value.
func (rs *ResultSet) sortRows(rows []row) error {
	if len(rs.order) == 0 {
		return nil
	}
	keys, err := rs.sortKeys()
	if err != nil {
		return err
	}

	coll := collate.New(language.Und)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		for _, k := range keys {
			c := compareValues(a.values[k.index], b.values[k.index], coll)
			if c != 0 {
				if k.ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return a.id < b.id
	})
	return nil
}

// sortKeys resolves the set's descriptors against the class. The self
// property denotes the intrinsic value of a primitive element; records
// have none.
func (rs *ResultSet) sortKeys() ([]sortKey, error) {
	keys := make([]sortKey, 0, len(rs.order))
	for _, d := range rs.order {
		if d.Property == liveset.SelfProperty {
			if !rs.class.Primitive {
				return nil, liveset.NewPropertyResolutionError(liveset.SelfProperty,
					fmt.Sprintf("class %s holds records, which have no intrinsic ordering value", rs.class.Name))
			}
			keys = append(keys, sortKey{index: 0, ascending: d.Ascending})
			continue
		}
		if rs.class.Primitive {
			return nil, liveset.NewPropertyResolutionError(d.Property,
				"cannot sort a collection of primitives by property name")
		}
		_, index, ok := rs.class.Property(d.Property)
		if !ok {
			return nil, liveset.NewPropertyResolutionError(d.Property,
				fmt.Sprintf("class %s has no such property", rs.class.Name))
		}
		keys = append(keys, sortKey{index: index, ascending: d.Ascending})
	}
	return keys, nil
}

// compareValues orders two column values of the same base type. Null
// sorts first; strings use Unicode collation. Mismatched representations
// compare equal, which cannot happen for values decoded from one column.
func compareValues(a, b liveset.Value, coll *collate.Collator) int {
	_, aNull := a.(liveset.Null)
	_, bNull := b.(liveset.Null)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}

	switch av := a.(type) {
	case liveset.Int:
		if bv, ok := b.(liveset.Int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
		}
	case liveset.Float:
		if bv, ok := b.(liveset.Float); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
		}
	case liveset.Bool:
		if bv, ok := b.(liveset.Bool); ok {
			switch {
			case !bool(av) && bool(bv):
				return -1
			case bool(av) && !bool(bv):
				return 1
			}
		}
	case liveset.String:
		if bv, ok := b.(liveset.String); ok {
			return coll.CompareString(string(av), string(bv))
		}
	case liveset.Timestamp:
		if bv, ok := b.(liveset.Timestamp); ok {
			at, bt := time.Time(av), time.Time(bv)
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
		}
	case liveset.Decimal:
		if bv, ok := b.(liveset.Decimal); ok {
			return av.Rat().Cmp(bv.Rat())
		}
	case liveset.BigInt:
		if bv, ok := b.(liveset.BigInt); ok {
			return av.Int().Cmp(bv.Int())
		}
	}
	return 0
}
