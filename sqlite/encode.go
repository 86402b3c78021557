package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rowanvale/liveset"
	"github.com/rowanvale/liveset/internal/schema"
)

// Storage encoding per base type:
//
//	int       INTEGER
//	float     REAL
//	bool      INTEGER (0/1)
//	string    TEXT
//	timestamp INTEGER (nanoseconds since the Unix epoch)
//	decimal   TEXT (decimal literal, exact up to 12 fractional digits)
//
// The query compiler mirrors this encoding when it binds comparison
// parameters.

// columnSQLType returns the SQLite storage type for a base type.
func columnSQLType(t schema.Type) string {
	switch t {
	case schema.TypeInt, schema.TypeBool, schema.TypeTimestamp:
		return "INTEGER"
	case schema.TypeFloat:
		return "REAL"
	case schema.TypeString, schema.TypeDecimal:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// encodeValue converts a native value to its SQL bind parameter for a
// column of the given base type.
func encodeValue(v liveset.Value, t schema.Type) (any, error) {
	switch n := v.(type) {
	case nil, liveset.Null:
		return nil, nil
	case liveset.Int:
		return int64(n), nil
	case liveset.Float:
		return float64(n), nil
	case liveset.Bool:
		if n {
			return int64(1), nil
		}
		return int64(0), nil
	case liveset.String:
		return string(n), nil
	case liveset.Timestamp:
		return n.Time().UnixNano(), nil
	case liveset.Decimal:
		return n.String(), nil
	case liveset.BigInt:
		return n.Int().String(), nil
	default:
		return nil, fmt.Errorf("value type %T cannot be stored in a %s column", v, t)
	}
}

// valueMatches reports whether a native value carries the representation
// required by a column's base type. Null matches any type; the caller
// checks optionality separately.
func valueMatches(v liveset.Value, t schema.Type) bool {
	switch v.(type) {
	case liveset.Null:
		return true
	case liveset.Int:
		return t == schema.TypeInt
	case liveset.Float:
		return t == schema.TypeFloat
	case liveset.Bool:
		return t == schema.TypeBool
	case liveset.String:
		return t == schema.TypeString
	case liveset.Timestamp:
		return t == schema.TypeTimestamp
	case liveset.Decimal, liveset.BigInt:
		return t == schema.TypeDecimal
	default:
		return false
	}
}

// scanDest returns the scan destination for a column of the given base
// type. All destinations are nullable; decodeDest maps SQL NULL to Null.
func scanDest(t schema.Type) any {
	switch t {
	case schema.TypeFloat:
		return &sql.NullFloat64{}
	case schema.TypeString, schema.TypeDecimal:
		return &sql.NullString{}
	default:
		return &sql.NullInt64{}
	}
}

// decodeDest converts a scanned destination back to a native value.
func decodeDest(d any, t schema.Type) (liveset.Value, error) {
	switch t {
	case schema.TypeInt:
		n := d.(*sql.NullInt64)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		return liveset.Int(n.Int64), nil
	case schema.TypeBool:
		n := d.(*sql.NullInt64)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		return liveset.Bool(n.Int64 != 0), nil
	case schema.TypeTimestamp:
		n := d.(*sql.NullInt64)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		return liveset.Timestamp(time.Unix(0, n.Int64).UTC()), nil
	case schema.TypeFloat:
		n := d.(*sql.NullFloat64)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		return liveset.Float(n.Float64), nil
	case schema.TypeString:
		n := d.(*sql.NullString)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		return liveset.String(n.String), nil
	case schema.TypeDecimal:
		n := d.(*sql.NullString)
		if !n.Valid {
			return liveset.Null{}, nil
		}
		dec, err := liveset.NewDecimal(n.String)
		if err != nil {
			return nil, fmt.Errorf("decoding decimal column: %w", err)
		}
		return dec, nil
	default:
		return nil, fmt.Errorf("unknown base type %q", t)
	}
}

// quoteIdent quotes a table or column name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
