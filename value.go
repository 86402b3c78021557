package liveset

import (
	"fmt"
	"math/big"
	"time"
)

// Value is a sealed interface over the engine-native value representations.
// Only Null, Int, Float, Bool, String, Timestamp, BigInt, Decimal, and
// Object implement it, so consumers can type-switch exhaustively.
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Null represents an absent or SQL NULL value.
// Using an explicit type ensures absence still satisfies the sealed interface.
type Null struct{}

func (Null) value() {}

// Int represents an engine-native 64-bit integer.
type Int int64

func (Int) value() {}

// Float represents an engine-native double-precision float.
type Float float64

func (Float) value() {}

// Bool represents an engine-native boolean.
type Bool bool

func (Bool) value() {}

// String represents an engine-native string.
type String string

func (String) value() {}

// Timestamp represents an engine-native point in time.
type Timestamp time.Time

func (Timestamp) value() {}

// Time returns the wrapped time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// BigInt represents an arbitrary-precision integer, produced by aggregate
// operations whose result leaves the int64 range.
type BigInt struct {
	v *big.Int
}

func (BigInt) value() {}

// NewBigInt wraps an arbitrary-precision integer. The argument is copied
// so later mutation of i does not leak into the value.
func NewBigInt(i *big.Int) BigInt {
	return BigInt{v: new(big.Int).Set(i)}
}

// Int returns a copy of the wrapped integer.
func (b BigInt) Int() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.v)
}

// Decimal represents a high-precision decimal value, backed by an exact
// rational. Used for columns that must not accumulate float error.
type Decimal struct {
	v *big.Rat
}

func (Decimal) value() {}

// NewDecimal parses a decimal literal such as "12.375".
func NewDecimal(s string) (Decimal, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Decimal{}, fmt.Errorf("invalid decimal literal: %q", s)
	}
	return Decimal{v: r}, nil
}

// NewDecimalFromRat wraps an exact rational. The argument is copied.
func NewDecimalFromRat(r *big.Rat) Decimal {
	return Decimal{v: new(big.Rat).Set(r)}
}

// Rat returns a copy of the wrapped rational.
func (d Decimal) Rat() *big.Rat {
	if d.v == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(d.v)
}

// String formats the decimal with up to 12 fractional digits, trimmed.
func (d Decimal) String() string {
	if d.v == nil {
		return "0"
	}
	s := d.v.FloatString(12)
	// Trim trailing zeros but keep at least one digit after the point.
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Object represents a structured record: property name to native value.
type Object map[string]Value

func (Object) value() {}

// Equal reports deep equality of two native values.
//
// Numeric variants compare within their own representation only - an Int
// never equals a Float. This mirrors the engine's typed columns, where a
// value read back always carries the column's representation.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Timestamp:
		bv, ok := b.(Timestamp)
		return ok && time.Time(av).Equal(time.Time(bv))
	case BigInt:
		bv, ok := b.(BigInt)
		return ok && av.Int().Cmp(bv.Int()) == 0
	case Decimal:
		bv, ok := b.(Decimal)
		return ok && av.Rat().Cmp(bv.Rat()) == 0
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, present := bv[k]
			if !present || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
