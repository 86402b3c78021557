package liveset

// Column is an opaque, schema-resolved handle identifying a structured
// record property, or the intrinsic element value of a primitive
// collection. Resolve one through a ColumnMeta; the zero value is invalid.
type Column struct {
	name  string
	index int
	self  bool
}

// NewColumn creates a handle for a named record property at the given
// engine column index. Intended for ColumnMeta implementations.
func NewColumn(name string, index int) Column {
	return Column{name: name, index: index}
}

// SelfColumn returns the handle for intrinsic element ordering.
func SelfColumn() Column {
	return Column{self: true}
}

// Name returns the resolved property name, or "" for the self column.
func (c Column) Name() string { return c.name }

// Index returns the engine column index. Meaningless for the self column.
func (c Column) Index() int { return c.index }

// IsSelf reports whether the handle denotes intrinsic element ordering.
func (c Column) IsSelf() bool { return c.self }

// ColumnMeta resolves property names to column handles for collections of
// structured records. Absent (nil) on collections of primitives.
type ColumnMeta interface {
	// ResolveColumn resolves a property name. Unknown names fail with a
	// property resolution error.
	ResolveColumn(name string) (Column, error)

	// DefaultColumn returns the column selected when an aggregate is
	// called without a property name, if one is well-defined.
	DefaultColumn() (Column, bool)

	// KeyPaths returns the property-name to engine-column mapping handed
	// to the query compiler.
	KeyPaths() map[string]string
}

// CompiledQuery is an engine-native compiled predicate, produced by a
// QueryCompiler and consumed by Backing.Filter.
type CompiledQuery interface {
	// Clause returns the parameterized condition and its bound parameters.
	Clause() (condition string, params []any)
}

// QueryCompiler compiles a query string plus positional arguments into an
// engine-native predicate, bound to a key-path mapping derived from the
// schema context. Malformed input fails with a syntax error.
type QueryCompiler interface {
	Compile(query string, args []any, keyPaths map[string]string) (CompiledQuery, error)
}

// Backing is the native ordered result set a collection facade wraps.
//
// A backing collection may be synchronized to a shared underlying data
// version, but each handle is exclusively owned by one facade instance.
// All calls are synchronous; delivery of change notifications is
// serialized per data version, so no two cycles for the same handle
// overlap.
type Backing interface {
	// Size returns the current number of elements. Never cached by
	// callers: the facade's length delegates here on every query.
	Size() int

	// Get returns the native value at index i. The index must be within
	// [0, Size()); the facade guards range before delegating.
	Get(i int) (Value, error)

	// IndexOf returns the index of the first element equal to v, or -1.
	IndexOf(v Value) int

	// IndexOfByIdentity returns the index of the element with the given
	// engine identity key, or -1.
	IndexOfByIdentity(key int64) int

	// Min, Max, and Average return Null on an empty collection.
	// Sum of an empty collection returns the column's typed zero, never
	// Null. Null elements are skipped.
	Min(col Column) (Value, error)
	Max(col Column) (Value, error)
	Sum(col Column) (Value, error)
	Average(col Column) (Value, error)

	// Sort returns a new backing collection ordered by the canonical
	// descriptors. The receiver is unchanged.
	Sort(descriptors []SortDescriptor) (Backing, error)

	// Filter returns a new backing collection restricted to elements
	// matching the compiled predicate.
	Filter(q CompiledQuery) (Backing, error)

	// Snapshot returns an immutable point-in-time fixation of the current
	// element ordering and identity.
	Snapshot() (Backing, error)

	// Subscribe registers the single change callback for this handle and
	// returns its teardown. The callback receives compact range-encoded
	// deltas; delivery is synchronous with the originating mutation.
	Subscribe(onChange func(RangeChanges)) (unsubscribe func(), err error)

	// ElementTypeName returns the record type name, or "" for a
	// collection of primitives.
	ElementTypeName() string
}
