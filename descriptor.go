package liveset

import "fmt"

// SelfProperty is the property path denoting intrinsic element ordering.
// It is the only legal path for collections of primitives.
const SelfProperty = "self"

// SortDescriptor is a canonical sort instruction: a property path plus an
// ascending flag. Call-site shapes are normalized into this form by
// NormalizeSort.
type SortDescriptor struct {
	Property  string
	Ascending bool
}

// NormalizeSort canonicalizes the accepted Sorted call shapes into a list
// of descriptors:
//
//	NormalizeSort()                      // ascending, intrinsic order
//	NormalizeSort(true)                  // reverse of intrinsic order
//	NormalizeSort("name")                // ascending by property
//	NormalizeSort("name", true)          // descending by property
//	NormalizeSort([]any{"name", []any{"age", true}})
//	NormalizeSort([]SortDescriptor{...}) // already canonical
//
// A boolean in second position is a descending flag: true maps to
// Ascending=false.
func NormalizeSort(args ...any) ([]SortDescriptor, error) {
	switch len(args) {
	case 0:
		return []SortDescriptor{{Property: SelfProperty, Ascending: true}}, nil

	case 1:
		switch a := args[0].(type) {
		case bool:
			return []SortDescriptor{{Property: SelfProperty, Ascending: !a}}, nil
		case string:
			return []SortDescriptor{{Property: a, Ascending: true}}, nil
		case SortDescriptor:
			return []SortDescriptor{a}, nil
		case []SortDescriptor:
			out := make([]SortDescriptor, len(a))
			copy(out, a)
			if len(out) == 0 {
				return nil, fmt.Errorf("sort descriptor list must not be empty")
			}
			return out, nil
		case []any:
			return normalizeList(a)
		case []string:
			out := make([]SortDescriptor, len(a))
			for i, p := range a {
				out[i] = SortDescriptor{Property: p, Ascending: true}
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("sort descriptor list must not be empty")
			}
			return out, nil
		default:
			return nil, fmt.Errorf("invalid sort argument type %T", args[0])
		}

	case 2:
		prop, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid sort argument type %T: property path expected", args[0])
		}
		descending, ok := args[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid sort argument type %T: descending flag expected", args[1])
		}
		return []SortDescriptor{{Property: prop, Ascending: !descending}}, nil

	default:
		return nil, fmt.Errorf("too many sort arguments: %d", len(args))
	}
}

// normalizeList canonicalizes an explicit descriptor list. Elements may be
// property strings, (path, descending) pairs, or SortDescriptor values.
func normalizeList(list []any) ([]SortDescriptor, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("sort descriptor list must not be empty")
	}
	out := make([]SortDescriptor, 0, len(list))
	for i, elem := range list {
		switch e := elem.(type) {
		case string:
			out = append(out, SortDescriptor{Property: e, Ascending: true})
		case SortDescriptor:
			out = append(out, e)
		case []any:
			d, err := normalizePair(e)
			if err != nil {
				return nil, fmt.Errorf("sort descriptor %d: %w", i, err)
			}
			out = append(out, d)
		default:
			return nil, fmt.Errorf("sort descriptor %d: invalid type %T", i, elem)
		}
	}
	return out, nil
}

// normalizePair canonicalizes a (path, descending?) pair.
func normalizePair(pair []any) (SortDescriptor, error) {
	if len(pair) < 1 || len(pair) > 2 {
		return SortDescriptor{}, fmt.Errorf("pair must have 1 or 2 elements, got %d", len(pair))
	}
	prop, ok := pair[0].(string)
	if !ok {
		return SortDescriptor{}, fmt.Errorf("property path expected, got %T", pair[0])
	}
	descending := false
	if len(pair) == 2 {
		descending, ok = pair[1].(bool)
		if !ok {
			return SortDescriptor{}, fmt.Errorf("descending flag expected, got %T", pair[1])
		}
	}
	return SortDescriptor{Property: prop, Ascending: !descending}, nil
}
