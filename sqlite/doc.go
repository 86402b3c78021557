// Package sqlite implements the embedded engine behind liveset
// collections: SQLite-backed, version-synchronized live result sets.
//
// ARCHITECTURE:
//
// Single-Writer Mutation Path:
// All writes go through Store.Insert/Update/Delete. Each mutation bumps a
// logical data version, re-materializes every registered live result set,
// diffs the old ordering against the new one, and delivers the resulting
// range-encoded deltas synchronously before the mutation call returns.
// Because refresh and delivery complete inside the mutation, no two
// notification cycles for the same result set ever overlap.
//
// Result Set Materialization:
// A ResultSet holds its rows (identity plus decoded column values) for
// the current data version. Element reads are O(1) against the
// materialized version; re-querying happens once per mutation, not per
// access. Derived sets (Sort, Filter) share the store and re-materialize
// on the same version boundary. Snapshots freeze their rows and never
// refresh or notify.
//
// Delta Attribution:
// Diffing is by row identity: deletions and old-modifications are indexed
// in the pre-change ordering, insertions and new-modifications in the
// post-change ordering. A row present in both orderings with changed
// column values is a modification; pure position shifts caused by
// neighboring inserts and deletes are implied, not reported.
//
// The package assumes a single logical thread of control and takes no
// locks, matching the collection layer's concurrency model.
package sqlite
