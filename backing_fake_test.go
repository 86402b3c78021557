package liveset

import (
	"fmt"
	"slices"
)

// fakeBacking is an in-memory Backing for facade tests. Mutations happen
// through mutate, which also delivers the change payload to the
// subscriber the way an engine refresh would.
type fakeBacking struct {
	elems    []Value
	typeName string
	frozen   bool

	onChange     func(RangeChanges)
	subscribes   int
	unsubscribes int
	snapshotErr  error
}

var _ Backing = (*fakeBacking)(nil)

func newFakeBacking(elems ...Value) *fakeBacking {
	return &fakeBacking{elems: elems}
}

func (b *fakeBacking) mutate(elems []Value, changes RangeChanges) {
	b.elems = elems
	if b.onChange != nil {
		b.onChange(changes)
	}
}

func (b *fakeBacking) Size() int { return len(b.elems) }

func (b *fakeBacking) Get(i int) (Value, error) {
	if i < 0 || i >= len(b.elems) {
		return nil, NewBoundsError(i)
	}
	return b.elems[i], nil
}

func (b *fakeBacking) IndexOf(v Value) int {
	for i, e := range b.elems {
		if Equal(e, v) {
			return i
		}
	}
	return -1
}

func (b *fakeBacking) IndexOfByIdentity(key int64) int {
	if key < 0 || key >= int64(len(b.elems)) {
		return -1
	}
	return int(key)
}

// pick resolves a column handle against one element.
func (b *fakeBacking) pick(col Column, e Value) Value {
	if col.IsSelf() {
		return e
	}
	if obj, ok := e.(Object); ok {
		if v, ok := obj[col.Name()]; ok {
			return v
		}
	}
	return Null{}
}

func (b *fakeBacking) Min(col Column) (Value, error) { return b.extremum(col, -1), nil }
func (b *fakeBacking) Max(col Column) (Value, error) { return b.extremum(col, 1), nil }

func (b *fakeBacking) extremum(col Column, sign int) Value {
	var best Value
	for _, e := range b.elems {
		v := b.pick(col, e)
		if _, isNull := v.(Null); isNull {
			continue
		}
		if best == nil || fakeCompare(v, best)*sign > 0 {
			best = v
		}
	}
	if best == nil {
		return Null{}
	}
	return best
}

func (b *fakeBacking) Sum(col Column) (Value, error) {
	var sum float64
	isFloat := false
	for _, e := range b.elems {
		switch v := b.pick(col, e).(type) {
		case Int:
			sum += float64(v)
		case Float:
			sum += float64(v)
			isFloat = true
		}
	}
	if isFloat {
		return Float(sum), nil
	}
	return Int(int64(sum)), nil
}

func (b *fakeBacking) Average(col Column) (Value, error) {
	var sum float64
	count := 0
	for _, e := range b.elems {
		switch v := b.pick(col, e).(type) {
		case Int:
			sum += float64(v)
			count++
		case Float:
			sum += float64(v)
			count++
		}
	}
	if count == 0 {
		return Null{}, nil
	}
	return Float(sum / float64(count)), nil
}

func fakeCompare(a, b Value) int {
	af, aok := fakeNumeric(a)
	bf, bok := fakeNumeric(b)
	if !aok || !bok {
		return 0
	}
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func fakeNumeric(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}

func (b *fakeBacking) Sort(descriptors []SortDescriptor) (Backing, error) {
	if len(descriptors) == 0 || descriptors[0].Property != SelfProperty {
		return nil, fmt.Errorf("fake backing sorts by self only")
	}
	out := slices.Clone(b.elems)
	asc := descriptors[0].Ascending
	slices.SortStableFunc(out, func(x, y Value) int {
		c := fakeCompare(x, y)
		if !asc {
			c = -c
		}
		return c
	})
	return &fakeBacking{elems: out, typeName: b.typeName, frozen: b.frozen}, nil
}

func (b *fakeBacking) Filter(q CompiledQuery) (Backing, error) {
	fc, ok := q.(fakeCompiled)
	if !ok {
		return nil, fmt.Errorf("fake backing got %T", q)
	}
	var out []Value
	for _, e := range b.elems {
		if fc.keep(e) {
			out = append(out, e)
		}
	}
	return &fakeBacking{elems: out, typeName: b.typeName}, nil
}

func (b *fakeBacking) Snapshot() (Backing, error) {
	if b.snapshotErr != nil {
		return nil, b.snapshotErr
	}
	return &fakeBacking{elems: slices.Clone(b.elems), typeName: b.typeName, frozen: true}, nil
}

func (b *fakeBacking) Subscribe(onChange func(RangeChanges)) (func(), error) {
	if b.frozen {
		return func() {}, nil
	}
	if b.onChange != nil {
		return nil, fmt.Errorf("already subscribed")
	}
	b.onChange = onChange
	b.subscribes++
	return func() {
		b.onChange = nil
		b.unsubscribes++
	}, nil
}

func (b *fakeBacking) ElementTypeName() string { return b.typeName }

// fakeCompiled keeps the elements its predicate accepts.
type fakeCompiled struct {
	keep func(Value) bool
}

func (c fakeCompiled) Clause() (string, []any) { return "fake", nil }

// fakeCompiler compiles every query to a fixed predicate.
type fakeCompiler struct {
	keep func(Value) bool
	err  error
}

func (c fakeCompiler) Compile(query string, args []any, keyPaths map[string]string) (CompiledQuery, error) {
	if c.err != nil {
		return nil, c.err
	}
	keep := c.keep
	if keep == nil {
		keep = func(Value) bool { return true }
	}
	return fakeCompiled{keep: keep}, nil
}

// fakeMeta resolves a fixed property set.
type fakeMeta struct {
	props      map[string]int
	defaultCol string
}

func (m fakeMeta) ResolveColumn(name string) (Column, error) {
	i, ok := m.props[name]
	if !ok {
		return Column{}, NewPropertyResolutionError(name, "no such property")
	}
	return NewColumn(name, i), nil
}

func (m fakeMeta) DefaultColumn() (Column, bool) {
	if m.defaultCol == "" {
		return Column{}, false
	}
	c, err := m.ResolveColumn(m.defaultCol)
	return c, err == nil
}

func (m fakeMeta) KeyPaths() map[string]string {
	out := make(map[string]string, len(m.props))
	for k := range m.props {
		out[k] = k
	}
	return out
}
