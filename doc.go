// Package liveset provides live, ordered, read-mostly collection views
// over an embedded database engine's query results.
//
// A Results facade looks and behaves like an in-memory array: random
// access, iteration, slicing, searching, folding, sorting, filtering, and
// aggregation. Underneath, every length and element read delegates to the
// engine's current result set, which can change between accesses as data
// mutates. Change notifications arrive from the engine as compact
// range-encoded deltas, are expanded into flat index sequences, and are
// delivered synchronously to listeners in registration order.
//
// CONSISTENCY MODEL:
//
// Two code paths on the same instance carry different guarantees, by
// design:
//
//   - Results.Get and Results.Length always reflect the live collection at
//     the instant of the call. Nothing is cached.
//   - Iterators from Values, Keys, and Entries freeze a snapshot when the
//     iterator is created and keep yielding that snapshot even if the
//     collection mutates during iteration.
//
// Sequence-transforming operations (Map, Filter, Reduce, Slice, ...) first
// materialize the full current element sequence and then operate on the
// materialized copy; they are not lazy and share no identity with the
// backing collection afterwards.
//
// ERROR ISOLATION:
//
// A listener fault must never unwind through the delivery call stack - that
// stack returns into the engine's mutation path, which cannot tolerate it.
// Each listener invocation therefore runs inside its own fault boundary;
// captured faults are re-raised on an independent goroutine after the
// invocation returns, and delivery continues to the remaining listeners in
// the same cycle.
//
// THREADING:
//
// The facade performs no internal locking. It assumes a single logical
// thread of control and executes every native call synchronously to
// completion. The engine serializes notification delivery per data
// version, so no two cycles for the same instance overlap.
//
// The sqlite subpackage provides the embedded engine: SQLite-backed result
// sets implementing the Backing contract, with per-mutation delta
// computation.
package liveset
