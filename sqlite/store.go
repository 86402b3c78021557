package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rowanvale/liveset"
	"github.com/rowanvale/liveset/internal/querystr"
	"github.com/rowanvale/liveset/internal/schema"
)

// Store owns the SQLite database and the live result sets synchronized
// against it. All mutations go through the store so that every registered
// live set refreshes on the same version boundary.
type Store struct {
	db      *sql.DB
	schema  *schema.Set
	version int64
	live    []*ResultSet
	logger  *slog.Logger
}

// Open creates or opens a SQLite database at the given path and applies
// the table layout declared by the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, set *schema.Set) (*Store, error) {
	if set == nil {
		return nil, fmt.Errorf("a schema is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applyTables(db, set); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, schema: set, logger: slog.Default()}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schema returns the loaded class declarations backing this store.
func (s *Store) Schema() *schema.Set {
	return s.schema
}

// Version returns the current logical data version. It advances once per
// committed mutation or explicit refresh.
func (s *Store) Version() int64 {
	return s.version
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Results opens a live view over all rows of a class and wraps it in a
// collection facade with the class's type adapter, column metadata, and
// query compiler.
func (s *Store) Results(ctx context.Context, class string) (*liveset.Results, error) {
	c, ok := s.schema.Class(class)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", class)
	}

	rs := &ResultSet{store: s, class: c}
	if err := rs.load(ctx); err != nil {
		return nil, fmt.Errorf("materializing %s: %w", class, err)
	}
	s.live = append(s.live, rs)

	compilerOpts := []querystr.CompilerOption{
		querystr.WithColumnTypes(c.ColumnTypes()),
	}
	if c.Primitive {
		compilerOpts = append(compilerOpts, querystr.WithSelfColumn(schema.PrimitiveValueColumn))
	}
	opts := []liveset.Option{
		liveset.WithQueryCompiler(querystr.New(compilerOpts...)),
	}

	var adapter liveset.TypeAdapter
	if c.Primitive {
		adapter = liveset.NewScalarAdapter(string(c.ElementType()), c.Properties[0].Optional)
	} else {
		adapter = liveset.NewRecordAdapter(c.Name, false)
		opts = append(opts, liveset.WithColumnMeta(schema.NewMeta(c)))
	}

	return liveset.New(rs, adapter, opts...)
}

// Insert adds one row to a class and returns its identity key. The value
// map is keyed by property name; for a primitive class use the "value"
// property or InsertValue. Missing optional properties store NULL.
func (s *Store) Insert(ctx context.Context, class string, values map[string]any) (int64, error) {
	c, ok := s.schema.Class(class)
	if !ok {
		return 0, fmt.Errorf("unknown class %q", class)
	}
	if err := checkKnownProperties(c, values); err != nil {
		return 0, err
	}

	cols := make([]string, 0, len(c.Properties))
	marks := make([]string, 0, len(c.Properties))
	params := make([]any, 0, len(c.Properties))
	for _, p := range c.Properties {
		param, err := encodeProperty(c, p, values)
		if err != nil {
			return 0, err
		}
		cols = append(cols, quoteIdent(p.Name))
		marks = append(marks, "?")
		params = append(params, param)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(c.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", class, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", class, err)
	}

	if err := s.commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// InsertValue adds one bare element to a primitive class.
func (s *Store) InsertValue(ctx context.Context, class string, value any) (int64, error) {
	c, ok := s.schema.Class(class)
	if !ok {
		return 0, fmt.Errorf("unknown class %q", class)
	}
	if !c.Primitive {
		return 0, fmt.Errorf("class %q holds records, not bare values", class)
	}
	return s.Insert(ctx, class, map[string]any{schema.PrimitiveValueColumn: value})
}

// Update overwrites the named properties of the row with the given
// identity key.
func (s *Store) Update(ctx context.Context, class string, id int64, changes map[string]any) error {
	c, ok := s.schema.Class(class)
	if !ok {
		return fmt.Errorf("unknown class %q", class)
	}
	if len(changes) == 0 {
		return fmt.Errorf("class %s: no properties to update", class)
	}
	if err := checkKnownProperties(c, changes); err != nil {
		return err
	}

	var sets []string
	var params []any
	for _, p := range c.Properties {
		host, present := changes[p.Name]
		if !present {
			continue
		}
		param, err := encodeHost(c, p, host)
		if err != nil {
			return err
		}
		sets = append(sets, quoteIdent(p.Name)+" = ?")
		params = append(params, param)
	}
	params = append(params, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		quoteIdent(c.Name), strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", class, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("class %s: no row with id %d", class, id)
	}

	return s.commit(ctx)
}

// Delete removes the row with the given identity key.
func (s *Store) Delete(ctx context.Context, class string, id int64) error {
	c, ok := s.schema.Class(class)
	if !ok {
		return fmt.Errorf("unknown class %q", class)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(c.Name))
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", class, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("class %s: no row with id %d", class, id)
	}

	return s.commit(ctx)
}

// Refresh advances the data version and re-materializes every live result
// set against the database's current contents. Use it to pick up writes
// made outside this store handle, e.g. by another process sharing the
// database file.
func (s *Store) Refresh(ctx context.Context) error {
	return s.commit(ctx)
}

// commit advances the version and refreshes all registered live sets.
// Refresh failures do not stop the sweep: every set gets its chance to
// synchronize, and the first error is reported.
func (s *Store) commit(ctx context.Context) error {
	s.version++

	var firstErr error
	for _, rs := range s.live {
		if err := rs.refresh(ctx); err != nil {
			s.logger.Error("live result set refresh failed",
				"class", rs.class.Name, "version", s.version, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.logger.Debug("refreshed live result sets",
		"version", s.version, "sets", len(s.live))
	return firstErr
}

// register adds a derived live set to the refresh sweep.
func (s *Store) register(rs *ResultSet) {
	s.live = append(s.live, rs)
}

// checkKnownProperties rejects value maps naming undeclared properties.
func checkKnownProperties(c *schema.Class, values map[string]any) error {
	for name := range values {
		if _, _, ok := c.Property(name); !ok {
			return liveset.NewPropertyResolutionError(name,
				fmt.Sprintf("class %s has no such property", c.Name))
		}
	}
	return nil
}

// encodeProperty encodes one property for an insert, supplying NULL for
// absent optional properties.
func encodeProperty(c *schema.Class, p schema.Property, values map[string]any) (any, error) {
	host, present := values[p.Name]
	if !present {
		if !p.Optional {
			return nil, fmt.Errorf("class %s: missing required property %q", c.Name, p.Name)
		}
		return nil, nil
	}
	return encodeHost(c, p, host)
}

// encodeHost converts one host value to its bind parameter.
func encodeHost(c *schema.Class, p schema.Property, host any) (any, error) {
	v, err := liveset.ToBinding(host)
	if err != nil {
		return nil, fmt.Errorf("class %s, property %q: %w", c.Name, p.Name, err)
	}
	if _, isNull := v.(liveset.Null); isNull && !p.Optional {
		return nil, fmt.Errorf("class %s: property %q is not optional", c.Name, p.Name)
	}
	if !valueMatches(v, p.Type) {
		return nil, fmt.Errorf("class %s: property %q expects %s, got %T",
			c.Name, p.Name, p.Type, host)
	}
	return encodeValue(v, p.Type)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applyTables creates one table per declared class. Idempotent.
func applyTables(db *sql.DB, set *schema.Set) error {
	for _, c := range set.Classes {
		cols := []string{"id INTEGER PRIMARY KEY AUTOINCREMENT"}
		for _, p := range c.Properties {
			col := quoteIdent(p.Name) + " " + columnSQLType(p.Type)
			if !p.Optional {
				col += " NOT NULL"
			}
			cols = append(cols, col)
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
			quoteIdent(c.Name), strings.Join(cols, ",\n\t"))
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating table for class %s: %w", c.Name, err)
		}
	}
	return nil
}
