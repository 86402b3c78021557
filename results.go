package liveset

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Results is a live, ordered, read-only view over a backing collection.
//
// Length and element reads always reflect the backing collection's current
// state; nothing is cached across calls. Iterators obtained from Values,
// Keys, or Entries are the exception: they freeze a snapshot at creation
// and keep yielding it even if the collection mutates underneath (see the
// package documentation for the asymmetry).
//
// A Results instance exclusively owns its backing handle. It is never
// shared or copied; derived views (Sorted, Filtered, Snapshot) each own a
// fresh handle.
type Results struct {
	backing  Backing
	adapter  TypeAdapter
	meta     ColumnMeta
	compiler QueryCompiler

	// props holds ordinary property assignments on the facade object,
	// including out-of-range index writes (see SetIndex).
	props     map[string]any
	propOrder []string

	subs *subscriptions
}

// Option configures a Results during construction.
type Option func(*Results)

// WithColumnMeta attaches the column-metadata context. Present only when
// elements are structured records.
func WithColumnMeta(meta ColumnMeta) Option {
	return func(r *Results) { r.meta = meta }
}

// WithQueryCompiler attaches the query compiler used by Filtered.
func WithQueryCompiler(c QueryCompiler) Option {
	return func(r *Results) { r.compiler = c }
}

// WithFaultHandler overrides how listener faults surface. The default
// re-raises each fault on an independent goroutine.
func WithFaultHandler(h FaultHandler) Option {
	return func(r *Results) { r.subs.onFault = h }
}

// New creates a collection facade over a backing handle.
//
// Direct construction without a backing handle or adapter is refused:
// facades only exist as views opened by an owning engine context.
func New(backing Backing, adapter TypeAdapter, opts ...Option) (*Results, error) {
	if backing == nil {
		return nil, NewConstructionError("a backing collection handle is required")
	}
	if adapter == nil {
		return nil, NewConstructionError("a type adapter is required")
	}
	r := &Results{
		backing: backing,
		adapter: adapter,
		props:   make(map[string]any),
	}
	r.subs = newSubscriptions(r, nil)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// derive wraps a backing handle produced by Sort/Filter/Snapshot, sharing
// the adapter, metadata, and compiler but nothing else.
func (r *Results) derive(b Backing) (*Results, error) {
	d, err := New(b, r.adapter)
	if err != nil {
		return nil, err
	}
	d.meta = r.meta
	d.compiler = r.compiler
	d.subs.onFault = r.subs.onFault
	return d, nil
}

// Close tears down any remaining notification subscriptions. Must be
// called no later than when the owning context releases the view.
func (r *Results) Close() error {
	r.subs.removeAll()
	return nil
}

// Length returns the backing collection's current size. Never stale.
func (r *Results) Length() int {
	return r.backing.Size()
}

// IsEmpty reports whether the collection currently has no elements.
func (r *Results) IsEmpty() bool {
	return r.Length() == 0
}

// Type returns the element base type name.
func (r *Results) Type() string {
	return r.adapter.BaseTypeName()
}

// Optional reports whether elements may be absent.
func (r *Results) Optional() bool {
	return r.adapter.IsNullable()
}

// Get returns the host value at index i, read from the live collection.
// Reads outside [0, Length()) yield nil and are not errors.
func (r *Results) Get(i int) any {
	if i < 0 || i >= r.backing.Size() {
		return nil
	}
	v, err := r.backing.Get(i)
	if err != nil {
		return nil
	}
	return r.adapter.FromBinding(v)
}

// At returns the element at index i, counting from the end when i is
// negative. Out-of-range reads yield nil.
func (r *Results) At(i int) any {
	if i < 0 {
		i += r.backing.Size()
	}
	return r.Get(i)
}

// SetIndex writes to an index slot. The base collection is read-only, so
// the in-range write path always fails.
//
// A negative index is a bounds violation. A write at an index >= Length
// is NOT routed to the collection at all: it degrades to an ordinary
// property assignment on the facade object and silently succeeds. That
// asymmetry is observed behavior of the original surface and is preserved
// deliberately; do not "fix" it here.
func (r *Results) SetIndex(i int, v any) error {
	if i < 0 {
		return NewBoundsError(i)
	}
	if i >= r.backing.Size() {
		// No-op on the collection: falls through to a plain property
		// assignment under the numeric-string key.
		r.setProp(strconv.Itoa(i), v)
		return nil
	}
	return NewUnsupportedError("element assignment")
}

// GetProperty reads a named property on the facade. Canonical
// numeric-string keys map to element reads; everything else reads the
// facade's own property slots.
func (r *Results) GetProperty(name string) any {
	if i, ok := parseIndex(name); ok {
		if i < r.backing.Size() {
			return r.Get(i)
		}
	}
	return r.props[name]
}

// SetProperty writes a named property. Canonical numeric-string keys route
// through SetIndex; everything else is an ordinary property assignment.
func (r *Results) SetProperty(name string, v any) error {
	if i, ok := parseIndex(name); ok {
		return r.SetIndex(i, v)
	}
	r.setProp(name, v)
	return nil
}

func (r *Results) setProp(name string, v any) {
	if _, exists := r.props[name]; !exists {
		r.propOrder = append(r.propOrder, name)
	}
	r.props[name] = v
}

// PropertyNames enumerates the facade's own keys: the synthetic numeric
// keys "0".."Length-1" followed by the declared property slots, without
// duplicates. Every synthetic index slot behaves as a configurable,
// enumerable, writable key, so generic convert-to-sequence code treats the
// facade like a plain array.
func (r *Results) PropertyNames() []string {
	n := r.backing.Size()
	names := make([]string, 0, n+len(r.propOrder))
	for i := 0; i < n; i++ {
		names = append(names, strconv.Itoa(i))
	}
	for _, name := range r.propOrder {
		if i, ok := parseIndex(name); ok && i < n {
			continue // shadowed by a live index slot
		}
		names = append(names, name)
	}
	return names
}

// parseIndex reports whether name is a canonical non-negative integer key.
func parseIndex(name string) (int, bool) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || strconv.Itoa(i) != name {
		return 0, false
	}
	return i, true
}

// Values returns an iterator over host values, pulled lazily one index at
// a time from a snapshot fixed at the moment of this call. Mutations of
// the live collection during iteration do not change what it yields.
func (r *Results) Values() iter.Seq[any] {
	snap := r.freeze()
	return func(yield func(any) bool) {
		n := snap.Size()
		for i := 0; i < n; i++ {
			v, err := snap.Get(i)
			if err != nil {
				return
			}
			if !yield(r.adapter.FromBinding(v)) {
				return
			}
		}
	}
}

// Keys returns an iterator over element indices, frozen at call time.
func (r *Results) Keys() iter.Seq[int] {
	n := r.freeze().Size()
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Entries returns an iterator over (index, value) pairs from a snapshot
// fixed at call time.
func (r *Results) Entries() iter.Seq2[int, any] {
	snap := r.freeze()
	return func(yield func(int, any) bool) {
		n := snap.Size()
		for i := 0; i < n; i++ {
			v, err := snap.Get(i)
			if err != nil {
				return
			}
			if !yield(i, r.adapter.FromBinding(v)) {
				return
			}
		}
	}
}

// freeze obtains the snapshot backing an iterator. If the engine cannot
// produce one, iteration degrades to the live handle.
func (r *Results) freeze() Backing {
	snap, err := r.backing.Snapshot()
	if err != nil {
		return r.backing
	}
	return snap
}

// materialize reads the full current element sequence into host values.
// Every sequence-transforming operation starts here: the result shares no
// identity with the backing collection.
func (r *Results) materialize() []any {
	n := r.backing.Size()
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.backing.Get(i)
		if err != nil {
			break
		}
		out = append(out, r.adapter.FromBinding(v))
	}
	return out
}

// IndexOf returns the index of the first element equal to v, or -1.
func (r *Results) IndexOf(v any) int {
	nv, err := r.adapter.ToBinding(v)
	if err != nil {
		return -1
	}
	return r.backing.IndexOf(nv)
}

// LastIndexOf returns the index of the last element equal to v, or -1.
func (r *Results) LastIndexOf(v any) int {
	nv, err := r.adapter.ToBinding(v)
	if err != nil {
		return -1
	}
	for i := r.backing.Size() - 1; i >= 0; i-- {
		ev, err := r.backing.Get(i)
		if err != nil {
			return -1
		}
		if Equal(ev, nv) {
			return i
		}
	}
	return -1
}

// Includes reports whether some element equals v.
func (r *Results) Includes(v any) bool {
	return r.IndexOf(v) >= 0
}

// Slice materializes the current sequence and returns a sub-slice.
// Bounds follow array slice semantics: zero, one (start), or two (start,
// end) arguments; negative bounds count from the end; out-of-range bounds
// are clamped.
func (r *Results) Slice(bounds ...int) []any {
	elems := r.materialize()
	n := len(elems)
	start, end := 0, n
	if len(bounds) > 0 {
		start = clampBound(bounds[0], n)
	}
	if len(bounds) > 1 {
		end = clampBound(bounds[1], n)
	}
	if start >= end {
		return []any{}
	}
	out := make([]any, end-start)
	copy(out, elems[start:end])
	return out
}

func clampBound(b, n int) int {
	if b < 0 {
		b += n
	}
	if b < 0 {
		return 0
	}
	if b > n {
		return n
	}
	return b
}

// Concat materializes the current sequence and appends the given element
// slices to it.
func (r *Results) Concat(others ...[]any) []any {
	out := r.materialize()
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// Join materializes the current sequence and joins the elements' string
// forms with the separator.
func (r *Results) Join(sep string) string {
	elems := r.materialize()
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e == nil {
			continue
		}
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, sep)
}

// Every reports whether pred holds for every element of the materialized
// sequence. True on an empty collection.
func (r *Results) Every(pred func(v any, index int) bool) bool {
	for i, e := range r.materialize() {
		if !pred(e, i) {
			return false
		}
	}
	return true
}

// Some reports whether pred holds for at least one element.
func (r *Results) Some(pred func(v any, index int) bool) bool {
	for i, e := range r.materialize() {
		if pred(e, i) {
			return true
		}
	}
	return false
}

// ForEach applies fn to every element of the materialized sequence.
func (r *Results) ForEach(fn func(v any, index int)) {
	for i, e := range r.materialize() {
		fn(e, i)
	}
}

// Map materializes the sequence and transforms each element.
func (r *Results) Map(fn func(v any, index int) any) []any {
	elems := r.materialize()
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = fn(e, i)
	}
	return out
}

// Filter materializes the sequence and keeps the elements matching pred.
// Unlike Filtered, the result is a plain host slice, not a live view.
func (r *Results) Filter(pred func(v any, index int) bool) []any {
	out := []any{}
	for i, e := range r.materialize() {
		if pred(e, i) {
			out = append(out, e)
		}
	}
	return out
}

// Reduce folds the materialized sequence left to right.
func (r *Results) Reduce(initial any, fn func(acc, v any, index int) any) any {
	acc := initial
	for i, e := range r.materialize() {
		acc = fn(acc, e, i)
	}
	return acc
}

// ReduceRight folds the materialized sequence right to left.
func (r *Results) ReduceRight(initial any, fn func(acc, v any, index int) any) any {
	elems := r.materialize()
	acc := initial
	for i := len(elems) - 1; i >= 0; i-- {
		acc = fn(acc, elems[i], i)
	}
	return acc
}

// Find returns the first element matching pred. The second result reports
// whether a match was found.
func (r *Results) Find(pred func(v any, index int) bool) (any, bool) {
	for i, e := range r.materialize() {
		if pred(e, i) {
			return e, true
		}
	}
	return nil, false
}

// FindIndex returns the index of the first element matching pred, or -1.
func (r *Results) FindIndex(pred func(v any, index int) bool) int {
	for i, e := range r.materialize() {
		if pred(e, i) {
			return i
		}
	}
	return -1
}

// FlatMap materializes the sequence, maps each element to a slice, and
// concatenates the results.
func (r *Results) FlatMap(fn func(v any, index int) []any) []any {
	out := []any{}
	for i, e := range r.materialize() {
		out = append(out, fn(e, i)...)
	}
	return out
}

// Flat is an extension point the base collection does not implement.
func (r *Results) Flat(depth int) ([]any, error) {
	return nil, NewUnsupportedError("flat")
}

// Description is an extension point the base collection does not implement.
func (r *Results) Description() (string, error) {
	return "", NewUnsupportedError("description")
}

// IsValid is an extension point the base collection does not implement.
func (r *Results) IsValid() (bool, error) {
	return false, NewUnsupportedError("validity check")
}

// MarshalJSON is an extension point the base collection does not implement.
func (r *Results) MarshalJSON() ([]byte, error) {
	return nil, NewUnsupportedError("serialization")
}

// Sorted returns a new live view ordered by the given descriptors, which
// accept every shape NormalizeSort does. The receiver is unchanged.
func (r *Results) Sorted(args ...any) (*Results, error) {
	descriptors, err := NormalizeSort(args...)
	if err != nil {
		return nil, err
	}
	for _, d := range descriptors {
		if d.Property == SelfProperty {
			continue
		}
		if r.meta == nil {
			return nil, NewPropertyResolutionError(d.Property,
				"cannot sort a collection of primitives by property name")
		}
		if _, err := r.meta.ResolveColumn(d.Property); err != nil {
			return nil, err
		}
	}
	sorted, err := r.backing.Sort(descriptors)
	if err != nil {
		return nil, fmt.Errorf("sort backing collection: %w", err)
	}
	return r.derive(sorted)
}

// Filtered compiles the query string with its positional arguments against
// the current schema context and returns a new live view restricted to the
// matching elements. The new view shares this one's type adapter.
func (r *Results) Filtered(query string, args ...any) (*Results, error) {
	if r.compiler == nil {
		return nil, NewUnsupportedError("filtered")
	}
	var keyPaths map[string]string
	if r.meta != nil {
		keyPaths = r.meta.KeyPaths()
	}
	compiled, err := r.compiler.Compile(query, args, keyPaths)
	if err != nil {
		return nil, err
	}
	filtered, err := r.backing.Filter(compiled)
	if err != nil {
		return nil, fmt.Errorf("filter backing collection: %w", err)
	}
	return r.derive(filtered)
}

// Snapshot returns an immutable point-in-time view of the current element
// ordering and identity, sharing this view's type adapter.
func (r *Results) Snapshot() (*Results, error) {
	snap, err := r.backing.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot backing collection: %w", err)
	}
	return r.derive(snap)
}

// Min returns the minimum of the named property (or of the elements
// themselves for a collection of primitives), or nil when empty.
func (r *Results) Min(property ...string) (any, error) {
	col, err := r.aggregateColumn(property)
	if err != nil {
		return nil, err
	}
	v, err := r.backing.Min(col)
	if err != nil {
		return nil, err
	}
	return normalizeAggregate(v)
}

// Max returns the maximum of the named property, or nil when empty.
func (r *Results) Max(property ...string) (any, error) {
	col, err := r.aggregateColumn(property)
	if err != nil {
		return nil, err
	}
	v, err := r.backing.Max(col)
	if err != nil {
		return nil, err
	}
	return normalizeAggregate(v)
}

// Sum returns the sum of the named property. The sum of an empty
// collection is 0, never nil.
func (r *Results) Sum(property ...string) (any, error) {
	col, err := r.aggregateColumn(property)
	if err != nil {
		return nil, err
	}
	v, err := r.backing.Sum(col)
	if err != nil {
		return nil, err
	}
	return normalizeAggregate(v)
}

// Avg returns the mean of the named property, or nil when empty.
func (r *Results) Avg(property ...string) (any, error) {
	col, err := r.aggregateColumn(property)
	if err != nil {
		return nil, err
	}
	v, err := r.backing.Average(col)
	if err != nil {
		return nil, err
	}
	return normalizeAggregate(v)
}

// aggregateColumn resolves the optional property argument of an aggregate
// call to a column handle.
func (r *Results) aggregateColumn(property []string) (Column, error) {
	if len(property) > 1 {
		return Column{}, fmt.Errorf("at most one property name expected, got %d", len(property))
	}
	if len(property) == 1 && property[0] != "" {
		if r.meta == nil {
			return Column{}, NewPropertyResolutionError(property[0],
				"cannot aggregate a collection of primitives by property name")
		}
		return r.meta.ResolveColumn(property[0])
	}
	if r.meta == nil {
		return SelfColumn(), nil
	}
	if col, ok := r.meta.DefaultColumn(); ok {
		return col, nil
	}
	return Column{}, NewPropertyResolutionError("",
		"a property name is required to aggregate structured records")
}

// AddListener registers a change listener and returns its removal token.
// The first registration establishes the native subscription.
func (r *Results) AddListener(fn Listener) (ListenerToken, error) {
	return r.subs.add(fn)
}

// RemoveListener drops a listener; it will receive no further
// notifications, including later in an in-flight delivery cycle.
func (r *Results) RemoveListener(token ListenerToken) {
	r.subs.remove(token)
}

// RemoveAllListeners drops every listener and tears down the native
// subscription.
func (r *Results) RemoveAllListeners() {
	r.subs.removeAll()
}
