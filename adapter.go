package liveset

import (
	"fmt"
	"math/big"
	"time"
)

// TypeAdapter converts between host values and engine-native values for
// one element type. Adapters are stateless and shared freely between a
// facade and the views derived from it.
type TypeAdapter interface {
	// ToBinding converts a host value to its native representation.
	ToBinding(host any) (Value, error)

	// FromBinding converts a native value back to a host value.
	FromBinding(v Value) any

	// BaseTypeName returns the element type name, e.g. "int" or a record
	// type name.
	BaseTypeName() string

	// IsNullable reports whether elements may be absent.
	IsNullable() bool
}

// ScalarAdapter converts primitive elements of a single base type.
type ScalarAdapter struct {
	typeName string
	nullable bool
}

// NewScalarAdapter creates an adapter for one of the primitive base types:
// "int", "float", "bool", "string", "timestamp", "decimal".
func NewScalarAdapter(typeName string, nullable bool) *ScalarAdapter {
	return &ScalarAdapter{typeName: typeName, nullable: nullable}
}

// BaseTypeName returns the primitive base type name.
func (a *ScalarAdapter) BaseTypeName() string { return a.typeName }

// IsNullable reports whether elements may be absent.
func (a *ScalarAdapter) IsNullable() bool { return a.nullable }

// ToBinding converts a host scalar to its native representation.
// nil is accepted only for nullable element types.
func (a *ScalarAdapter) ToBinding(host any) (Value, error) {
	if host == nil {
		if !a.nullable {
			return nil, fmt.Errorf("nil value for non-nullable %s element", a.typeName)
		}
		return Null{}, nil
	}
	v, err := ToBinding(host)
	if err != nil {
		return nil, err
	}
	if !matchesType(v, a.typeName) {
		return nil, fmt.Errorf("host value %T does not match element type %s", host, a.typeName)
	}
	return v, nil
}

// FromBinding converts a native scalar to its host representation.
func (a *ScalarAdapter) FromBinding(v Value) any {
	return FromBinding(v)
}

// RecordAdapter converts structured record elements to and from host maps.
type RecordAdapter struct {
	typeName string
	nullable bool
}

// NewRecordAdapter creates an adapter for records of the named type.
func NewRecordAdapter(typeName string, nullable bool) *RecordAdapter {
	return &RecordAdapter{typeName: typeName, nullable: nullable}
}

// BaseTypeName returns the record type name.
func (a *RecordAdapter) BaseTypeName() string { return a.typeName }

// IsNullable reports whether elements may be absent.
func (a *RecordAdapter) IsNullable() bool { return a.nullable }

// ToBinding converts a host map to a native record.
func (a *RecordAdapter) ToBinding(host any) (Value, error) {
	if host == nil {
		if !a.nullable {
			return nil, fmt.Errorf("nil value for non-nullable %s record", a.typeName)
		}
		return Null{}, nil
	}
	m, ok := host.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("host value %T is not a record map", host)
	}
	obj := make(Object, len(m))
	for k, hv := range m {
		nv, err := ToBinding(hv)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		obj[k] = nv
	}
	return obj, nil
}

// FromBinding converts a native record to a host map.
func (a *RecordAdapter) FromBinding(v Value) any {
	return FromBinding(v)
}

// ToBinding converts an arbitrary host value to its native representation
// using Go dynamic type dispatch. Integers widen to Int, floats to Float.
func ToBinding(host any) (Value, error) {
	switch h := host.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return h, nil
	case bool:
		return Bool(h), nil
	case int:
		return Int(h), nil
	case int32:
		return Int(h), nil
	case int64:
		return Int(h), nil
	case float32:
		return Float(h), nil
	case float64:
		return Float(h), nil
	case string:
		return String(h), nil
	case time.Time:
		return Timestamp(h), nil
	case *big.Int:
		return NewBigInt(h), nil
	case *big.Rat:
		return NewDecimalFromRat(h), nil
	case map[string]any:
		obj := make(Object, len(h))
		for k, hv := range h {
			nv, err := ToBinding(hv)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", k, err)
			}
			obj[k] = nv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported host value type %T", host)
	}
}

// FromBinding converts a native value to its host representation:
// nil, int64, float64, bool, string, time.Time, *big.Int, *big.Rat, or
// map[string]any for records.
func FromBinding(v Value) any {
	switch n := v.(type) {
	case nil, Null:
		return nil
	case Int:
		return int64(n)
	case Float:
		return float64(n)
	case Bool:
		return bool(n)
	case String:
		return string(n)
	case Timestamp:
		return time.Time(n)
	case BigInt:
		return n.Int()
	case Decimal:
		return n.Rat()
	case Object:
		m := make(map[string]any, len(n))
		for k, nv := range n {
			m[k] = FromBinding(nv)
		}
		return m
	default:
		return nil
	}
}

// matchesType reports whether a native value carries the representation of
// the named primitive base type.
func matchesType(v Value, typeName string) bool {
	switch v.(type) {
	case Null:
		return true
	case Int:
		return typeName == "int"
	case Float:
		return typeName == "float"
	case Bool:
		return typeName == "bool"
	case String:
		return typeName == "string"
	case Timestamp:
		return typeName == "timestamp"
	case Decimal, BigInt:
		return typeName == "decimal"
	default:
		return false
	}
}
