package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rowanvale/liveset"
	"github.com/rowanvale/liveset/internal/schema"
)

// row is one materialized element: its identity key and its decoded
// column values in property declaration order.
type row struct {
	id     int64
	values []liveset.Value
}

// ResultSet is a SQLite-backed implementation of liveset.Backing: an
// ordered view over one class's rows, optionally restricted by a compiled
// predicate and reordered by sort descriptors.
//
// Live sets re-materialize on every store version boundary and report the
// ordering delta to their subscriber. Frozen sets (snapshots) keep their
// rows forever and never notify.
type ResultSet struct {
	store *Store
	class *schema.Class

	// where is the accumulated SQL condition, "" when unrestricted.
	where  string
	params []any
	order  []liveset.SortDescriptor

	frozen bool
	rows   []row

	onChange func(liveset.RangeChanges)
}

var _ liveset.Backing = (*ResultSet)(nil)

// load materializes the set's rows from the database.
func (rs *ResultSet) load(ctx context.Context) error {
	rows, err := rs.queryRows(ctx)
	if err != nil {
		return err
	}
	if err := rs.sortRows(rows); err != nil {
		return err
	}
	rs.rows = rows
	return nil
}

// refresh re-materializes a live set and delivers the ordering delta.
func (rs *ResultSet) refresh(ctx context.Context) error {
	if rs.frozen {
		return nil
	}
	newRows, err := rs.queryRows(ctx)
	if err != nil {
		return err
	}
	if err := rs.sortRows(newRows); err != nil {
		return err
	}
	changes := diffRows(rs.rows, newRows)
	rs.rows = newRows
	if rs.onChange != nil && !rangesEmpty(changes) {
		rs.onChange(changes)
	}
	return nil
}

// queryRows fetches and decodes the set's rows in identity order. Sort
// descriptors are applied afterwards in sortRows; identity order is the
// stable base ordering.
func (rs *ResultSet) queryRows(ctx context.Context) ([]row, error) {
	cols := make([]string, 0, 1+len(rs.class.Properties))
	cols = append(cols, "id")
	for _, p := range rs.class.Properties {
		cols = append(cols, quoteIdent(p.Name))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(rs.class.Name))
	if rs.where != "" {
		query += " WHERE " + rs.where
	}
	query += " ORDER BY id ASC"

	dbRows, err := rs.store.db.QueryContext(ctx, query, rs.params...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", rs.class.Name, err)
	}
	defer dbRows.Close()

	var out []row
	for dbRows.Next() {
		var id int64
		dests := make([]any, 0, 1+len(rs.class.Properties))
		dests = append(dests, &id)
		for _, p := range rs.class.Properties {
			dests = append(dests, scanDest(p.Type))
		}
		if err := dbRows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", rs.class.Name, err)
		}

		values := make([]liveset.Value, len(rs.class.Properties))
		for i, p := range rs.class.Properties {
			v, err := decodeDest(dests[i+1], p.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d, property %q: %w", id, p.Name, err)
			}
			values[i] = v
		}
		out = append(out, row{id: id, values: values})
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", rs.class.Name, err)
	}
	return out, nil
}

// Size implements liveset.Backing.
func (rs *ResultSet) Size() int {
	return len(rs.rows)
}

// Get implements liveset.Backing.
func (rs *ResultSet) Get(i int) (liveset.Value, error) {
	if i < 0 || i >= len(rs.rows) {
		return nil, liveset.NewBoundsError(i)
	}
	return rs.element(i), nil
}

// element builds the native value at a known-valid index. Primitive
// elements are the bare value column; records become objects keyed by
// property name.
func (rs *ResultSet) element(i int) liveset.Value {
	r := rs.rows[i]
	if rs.class.Primitive {
		return r.values[0]
	}
	obj := make(liveset.Object, len(rs.class.Properties))
	for j, p := range rs.class.Properties {
		obj[p.Name] = r.values[j]
	}
	return obj
}

// IndexOf implements liveset.Backing.
func (rs *ResultSet) IndexOf(v liveset.Value) int {
	for i := range rs.rows {
		if liveset.Equal(rs.element(i), v) {
			return i
		}
	}
	return -1
}

// IndexOfByIdentity implements liveset.Backing.
func (rs *ResultSet) IndexOfByIdentity(key int64) int {
	for i, r := range rs.rows {
		if r.id == key {
			return i
		}
	}
	return -1
}

// Sort implements liveset.Backing. The descriptors replace any ordering
// already applied to the receiver.
func (rs *ResultSet) Sort(descriptors []liveset.SortDescriptor) (liveset.Backing, error) {
	derived := &ResultSet{
		store:  rs.store,
		class:  rs.class,
		where:  rs.where,
		params: slices.Clone(rs.params),
		order:  slices.Clone(descriptors),
		frozen: rs.frozen,
		rows:   slices.Clone(rs.rows),
	}
	if err := derived.sortRows(derived.rows); err != nil {
		return nil, err
	}
	if !derived.frozen {
		rs.store.register(derived)
	}
	return derived, nil
}

// Filter implements liveset.Backing. The compiled condition is pushed to
// SQL, combined with any restriction already on the receiver.
func (rs *ResultSet) Filter(q liveset.CompiledQuery) (liveset.Backing, error) {
	if rs.frozen {
		return nil, fmt.Errorf("cannot filter a snapshot")
	}

	cond, condParams := q.Clause()
	where := cond
	params := slices.Clone(rs.params)
	if rs.where != "" {
		where = "(" + rs.where + ") AND (" + cond + ")"
	}
	params = append(params, condParams...)

	derived := &ResultSet{
		store:  rs.store,
		class:  rs.class,
		where:  where,
		params: params,
		order:  slices.Clone(rs.order),
	}
	if err := derived.load(context.Background()); err != nil {
		return nil, err
	}
	rs.store.register(derived)
	return derived, nil
}

// Snapshot implements liveset.Backing. The copy keeps the current rows,
// never refreshes, and never notifies.
func (rs *ResultSet) Snapshot() (liveset.Backing, error) {
	return &ResultSet{
		store:  rs.store,
		class:  rs.class,
		where:  rs.where,
		params: slices.Clone(rs.params),
		order:  slices.Clone(rs.order),
		frozen: true,
		rows:   slices.Clone(rs.rows),
	}, nil
}

// Subscribe implements liveset.Backing. A frozen set accepts the
// subscription but never fires it.
func (rs *ResultSet) Subscribe(onChange func(liveset.RangeChanges)) (func(), error) {
	if rs.frozen {
		return func() {}, nil
	}
	if rs.onChange != nil {
		return nil, fmt.Errorf("change callback already registered")
	}
	rs.onChange = onChange
	return func() { rs.onChange = nil }, nil
}

// ElementTypeName implements liveset.Backing.
func (rs *ResultSet) ElementTypeName() string {
	return rs.class.ElementTypeName()
}

// rangesEmpty reports whether a delta carries no ranges at all.
func rangesEmpty(rc liveset.RangeChanges) bool {
	return len(rc.Insertions) == 0 &&
		len(rc.Deletions) == 0 &&
		len(rc.OldModifications) == 0 &&
		len(rc.NewModifications) == 0
}
