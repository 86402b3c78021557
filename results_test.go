package liveset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntResults(t *testing.T, elems ...int64) (*Results, *fakeBacking) {
	t.Helper()
	values := make([]Value, len(elems))
	for i, e := range elems {
		values[i] = Int(e)
	}
	b := newFakeBacking(values...)
	r, err := New(b, NewScalarAdapter("int", false))
	require.NoError(t, err)
	return r, b
}

func TestNew_RequiresBackingAndAdapter(t *testing.T) {
	_, err := New(nil, NewScalarAdapter("int", false))
	require.Error(t, err)
	assert.True(t, IsConstructionError(err))

	_, err = New(newFakeBacking(), nil)
	require.Error(t, err)
	assert.True(t, IsConstructionError(err))
}

func TestLength_NeverCached(t *testing.T) {
	r, b := newIntResults(t, 1, 2, 3)
	assert.Equal(t, 3, r.Length())
	assert.False(t, r.IsEmpty())

	b.mutate([]Value{Int(1)}, RangeChanges{})
	assert.Equal(t, 1, r.Length())

	b.mutate(nil, RangeChanges{})
	assert.True(t, r.IsEmpty())
}

func TestGet_OutOfRangeIsAbsentNotError(t *testing.T) {
	r, _ := newIntResults(t, 10, 20)

	assert.Equal(t, int64(10), r.Get(0))
	assert.Equal(t, int64(20), r.Get(1))
	assert.Nil(t, r.Get(2))
	assert.Nil(t, r.Get(-1))
	assert.Nil(t, r.Get(1000))
}

func TestAt_NegativeCountsFromEnd(t *testing.T) {
	r, _ := newIntResults(t, 10, 20, 30)

	assert.Equal(t, int64(30), r.At(-1))
	assert.Equal(t, int64(10), r.At(-3))
	assert.Nil(t, r.At(-4))
	assert.Equal(t, int64(20), r.At(1))
}

func TestGet_ReadsLiveState(t *testing.T) {
	r, b := newIntResults(t, 1, 2, 3)
	assert.Equal(t, int64(2), r.Get(1))

	b.mutate([]Value{Int(9), Int(8)}, RangeChanges{})
	assert.Equal(t, int64(8), r.Get(1))
}

func TestSetIndex_NegativeIsBoundsViolation(t *testing.T) {
	r, _ := newIntResults(t, 1, 2)
	err := r.SetIndex(-1, 99)
	require.Error(t, err)
	assert.True(t, IsBoundsError(err))
}

func TestSetIndex_InRangeIsUnsupported(t *testing.T) {
	r, _ := newIntResults(t, 1, 2)
	err := r.SetIndex(0, 99)
	require.Error(t, err)
	assert.True(t, IsUnsupportedError(err))

	// The element is untouched.
	assert.Equal(t, int64(1), r.Get(0))
}

func TestSetIndex_BeyondEndDegradesToPropertyWrite(t *testing.T) {
	r, _ := newIntResults(t, 1, 2)

	// Writing past the end silently succeeds as a property assignment.
	require.NoError(t, r.SetIndex(5, "stashed"))

	// The collection itself is unchanged and the slot is not an element.
	assert.Equal(t, 2, r.Length())
	assert.Nil(t, r.Get(5))

	// The value is readable through the property surface.
	assert.Equal(t, "stashed", r.GetProperty("5"))
}

func TestProperty_IndexKeysRouteToElements(t *testing.T) {
	r, _ := newIntResults(t, 10, 20)

	assert.Equal(t, int64(10), r.GetProperty("0"))
	assert.Equal(t, int64(20), r.GetProperty("1"))

	// Non-canonical numeric spellings are plain property keys.
	assert.Nil(t, r.GetProperty("01"))
	assert.Nil(t, r.GetProperty("+1"))
	assert.Nil(t, r.GetProperty("-0"))

	require.NoError(t, r.SetProperty("label", "mine"))
	assert.Equal(t, "mine", r.GetProperty("label"))

	// In-range index writes through the property surface still fail.
	err := r.SetProperty("1", 99)
	require.Error(t, err)
	assert.True(t, IsUnsupportedError(err))
}

func TestPropertyNames_SyntheticIndexKeysFirst(t *testing.T) {
	r, b := newIntResults(t, 1, 2)
	require.NoError(t, r.SetProperty("label", "x"))
	require.NoError(t, r.SetIndex(3, "stash"))

	assert.Equal(t, []string{"0", "1", "label", "3"}, r.PropertyNames())

	// Growth shadows the stashed numeric key with a live index slot.
	b.mutate([]Value{Int(1), Int(2), Int(3), Int(4)}, RangeChanges{})
	assert.Equal(t, []string{"0", "1", "2", "3", "label"}, r.PropertyNames())
	assert.Equal(t, int64(4), r.GetProperty("3"))
}

func TestValues_FrozenAtCreation(t *testing.T) {
	r, b := newIntResults(t, 1, 2, 3)

	seq := r.Values()
	b.mutate([]Value{Int(9)}, RangeChanges{})

	var got []any
	for v := range seq {
		got = append(got, v)
	}
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got,
		"iterator yields the sequence fixed at creation")

	// Indexed reads see the mutation; the asymmetry is intended.
	assert.Equal(t, int64(9), r.Get(0))
	assert.Equal(t, 1, r.Length())
}

func TestEntries_And_Keys(t *testing.T) {
	r, _ := newIntResults(t, 5, 6)

	var keys []int
	for k := range r.Keys() {
		keys = append(keys, k)
	}
	assert.Equal(t, []int{0, 1}, keys)

	var pairs [][2]any
	for i, v := range r.Entries() {
		pairs = append(pairs, [2]any{i, v})
	}
	assert.Equal(t, [][2]any{{0, int64(5)}, {1, int64(6)}}, pairs)
}

func TestIndexOf_And_LastIndexOf(t *testing.T) {
	r, _ := newIntResults(t, 1, 2, 1, 3)

	assert.Equal(t, 0, r.IndexOf(int64(1)))
	assert.Equal(t, 2, r.LastIndexOf(int64(1)))
	assert.Equal(t, -1, r.IndexOf(int64(7)))
	assert.True(t, r.Includes(int64(3)))
	assert.False(t, r.Includes(int64(7)))

	// A host value of the wrong type can never be an element.
	assert.Equal(t, -1, r.IndexOf("1"))
}

func TestSlice_Bounds(t *testing.T) {
	r, _ := newIntResults(t, 0, 1, 2, 3, 4)

	assert.Equal(t, []any{int64(0), int64(1), int64(2), int64(3), int64(4)}, r.Slice())
	assert.Equal(t, []any{int64(2), int64(3), int64(4)}, r.Slice(2))
	assert.Equal(t, []any{int64(1), int64(2)}, r.Slice(1, 3))
	assert.Equal(t, []any{int64(3), int64(4)}, r.Slice(-2))
	assert.Equal(t, []any{int64(0), int64(1)}, r.Slice(-100, 2))
	assert.Equal(t, []any{}, r.Slice(3, 1))
	assert.Equal(t, []any{}, r.Slice(100))
}

func TestJoin(t *testing.T) {
	r, _ := newIntResults(t, 1, 2, 3)
	assert.Equal(t, "1,2,3", r.Join(","))

	b := newFakeBacking(Int(1), Null{}, Int(3))
	rn, err := New(b, NewScalarAdapter("int", true))
	require.NoError(t, err)
	assert.Equal(t, "1--3", rn.Join("-"), "absent elements render empty")
}

func TestTransformOperations(t *testing.T) {
	r, _ := newIntResults(t, 1, 2, 3, 4)

	doubled := r.Map(func(v any, _ int) any { return v.(int64) * 2 })
	assert.Equal(t, []any{int64(2), int64(4), int64(6), int64(8)}, doubled)

	evens := r.Filter(func(v any, _ int) bool { return v.(int64)%2 == 0 })
	assert.Equal(t, []any{int64(2), int64(4)}, evens)

	sum := r.Reduce(int64(0), func(acc, v any, _ int) any { return acc.(int64) + v.(int64) })
	assert.Equal(t, int64(10), sum)

	order := r.ReduceRight("", func(acc, v any, _ int) any {
		return acc.(string) + fmt.Sprint(v)
	})
	assert.Equal(t, "4321", order, "folds right to left")

	assert.True(t, r.Every(func(v any, _ int) bool { return v.(int64) > 0 }))
	assert.False(t, r.Every(func(v any, _ int) bool { return v.(int64) > 1 }))
	assert.True(t, r.Some(func(v any, _ int) bool { return v.(int64) == 3 }))

	found, ok := r.Find(func(v any, _ int) bool { return v.(int64) > 2 })
	assert.True(t, ok)
	assert.Equal(t, int64(3), found)
	assert.Equal(t, 2, r.FindIndex(func(v any, _ int) bool { return v.(int64) > 2 }))
	assert.Equal(t, -1, r.FindIndex(func(v any, _ int) bool { return false }))

	flat := r.FlatMap(func(v any, _ int) []any { return []any{v, v} })
	assert.Len(t, flat, 8)

	visited := 0
	r.ForEach(func(any, int) { visited++ })
	assert.Equal(t, 4, visited)

	combined := r.Concat([]any{int64(9)}, []any{int64(10)})
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4), int64(9), int64(10)}, combined)
}

func TestTransform_MaterializesBeforeCallback(t *testing.T) {
	r, b := newIntResults(t, 1, 2, 3)

	// A callback that shrinks the collection mid-iteration still sees all
	// three original elements: the sequence was materialized up front.
	var got []any
	r.ForEach(func(v any, i int) {
		if i == 0 {
			b.mutate([]Value{Int(1)}, RangeChanges{})
		}
		got = append(got, v)
	})
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
}

func TestExtensionPoints_Unsupported(t *testing.T) {
	r, _ := newIntResults(t, 1)

	_, err := r.Flat(1)
	assert.True(t, IsUnsupportedError(err))
	_, err = r.Description()
	assert.True(t, IsUnsupportedError(err))
	_, err = r.IsValid()
	assert.True(t, IsUnsupportedError(err))
	_, err = r.MarshalJSON()
	assert.True(t, IsUnsupportedError(err))
}

func TestType_And_Optional(t *testing.T) {
	r, _ := newIntResults(t, 1)
	assert.Equal(t, "int", r.Type())
	assert.False(t, r.Optional())
}

func TestSorted_SelfOrder(t *testing.T) {
	r, _ := newIntResults(t, 3, 1, 2)

	asc, err := r.Sorted()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, asc.Slice())

	desc, err := r.Sorted(true)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(2), int64(1)}, desc.Slice())

	// The receiver is unchanged.
	assert.Equal(t, []any{int64(3), int64(1), int64(2)}, r.Slice())
}

func TestSorted_PrimitivesRejectPropertyNames(t *testing.T) {
	r, _ := newIntResults(t, 1, 2)

	_, err := r.Sorted("name")
	require.Error(t, err)
	assert.True(t, IsPropertyResolutionError(err))
}

func TestSorted_RecordsValidateThroughMeta(t *testing.T) {
	b := newFakeBacking(Object{"age": Int(1)})
	r, err := New(b, NewRecordAdapter("Person", false),
		WithColumnMeta(fakeMeta{props: map[string]int{"age": 0}}))
	require.NoError(t, err)

	_, err = r.Sorted("salary")
	require.Error(t, err)
	assert.True(t, IsPropertyResolutionError(err))
}

func TestSorted_InvalidShape(t *testing.T) {
	r, _ := newIntResults(t, 1)
	_, err := r.Sorted(42)
	require.Error(t, err)
}

func TestFiltered_WithoutCompilerIsUnsupported(t *testing.T) {
	r, _ := newIntResults(t, 1)
	_, err := r.Filtered(`self > 0`)
	require.Error(t, err)
	assert.True(t, IsUnsupportedError(err))
}

func TestFiltered_ProducesRestrictedLiveView(t *testing.T) {
	b := newFakeBacking(Int(1), Int(2), Int(3), Int(4))
	r, err := New(b, NewScalarAdapter("int", false),
		WithQueryCompiler(fakeCompiler{keep: func(v Value) bool {
			n, _ := v.(Int)
			return n%2 == 0
		}}))
	require.NoError(t, err)

	even, err := r.Filtered(`self % 2 == 0`)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(4)}, even.Slice())
	assert.Equal(t, 4, r.Length(), "receiver unchanged")
}

func TestFiltered_CompileErrorPropagates(t *testing.T) {
	b := newFakeBacking(Int(1))
	r, err := New(b, NewScalarAdapter("int", false),
		WithQueryCompiler(fakeCompiler{err: NewSyntaxError(3, "boom")}))
	require.NoError(t, err)

	_, err = r.Filtered(`???`)
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))
}

func TestSnapshot_IsImmuneToMutation(t *testing.T) {
	r, b := newIntResults(t, 1, 2, 3)

	snap, err := r.Snapshot()
	require.NoError(t, err)

	b.mutate([]Value{Int(9)}, RangeChanges{})

	assert.Equal(t, 3, snap.Length())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, snap.Slice())
	assert.Equal(t, 1, r.Length())
}

func TestAggregates_Primitives(t *testing.T) {
	r, _ := newIntResults(t, 4, 1, 3)

	min, err := r.Min()
	require.NoError(t, err)
	assert.Equal(t, float64(1), min)

	max, err := r.Max()
	require.NoError(t, err)
	assert.Equal(t, float64(4), max)

	sum, err := r.Sum()
	require.NoError(t, err)
	assert.Equal(t, float64(8), sum)

	avg, err := r.Avg()
	require.NoError(t, err)
	assert.InDelta(t, 8.0/3.0, avg, 1e-12)
}

func TestAggregates_EmptyCollection(t *testing.T) {
	r, _ := newIntResults(t)

	min, err := r.Min()
	require.NoError(t, err)
	assert.Nil(t, min, "minimum of nothing is absent")

	max, err := r.Max()
	require.NoError(t, err)
	assert.Nil(t, max)

	avg, err := r.Avg()
	require.NoError(t, err)
	assert.Nil(t, avg)

	// Sum is the exception: the empty sum is zero, never absent.
	sum, err := r.Sum()
	require.NoError(t, err)
	assert.Equal(t, float64(0), sum)
}

func TestAggregates_PropertyNameOnPrimitivesFails(t *testing.T) {
	r, _ := newIntResults(t, 1)
	_, err := r.Min("age")
	require.Error(t, err)
	assert.True(t, IsPropertyResolutionError(err))
}

func TestAggregates_RecordsNeedPropertyName(t *testing.T) {
	b := newFakeBacking(Object{"age": Int(30)}, Object{"age": Int(40)})
	r, err := New(b, NewRecordAdapter("Person", false),
		WithColumnMeta(fakeMeta{props: map[string]int{"age": 0}}))
	require.NoError(t, err)

	// No name, no default column: unresolvable.
	_, err = r.Min()
	require.Error(t, err)
	assert.True(t, IsPropertyResolutionError(err))

	avg, err := r.Avg("age")
	require.NoError(t, err)
	assert.Equal(t, float64(35), avg)
}

func TestAggregates_TooManyProperties(t *testing.T) {
	r, _ := newIntResults(t, 1)
	_, err := r.Sum("a", "b")
	require.Error(t, err)
}

func TestClose_TearsDownSubscriptions(t *testing.T) {
	r, b := newIntResults(t, 1)

	_, err := r.AddListener(func(*Results, ChangeSet) {})
	require.NoError(t, err)
	assert.Equal(t, 1, b.subscribes)

	require.NoError(t, r.Close())
	assert.Equal(t, 1, b.unsubscribes)
}
