package liveset

import (
	"math/big"
	"time"
)

// normalizeAggregate collapses the engine's aggregate representations to a
// plain host value: float64 for every numeric form, time.Time for
// timestamps, nil for an absent result.
//
// The type switch is exhaustive over the aggregate-capable variants of the
// sealed Value union. Anything else coming back from the backing
// collection is an internal-consistency violation and fails with a type
// assertion error rather than silently coercing.
func normalizeAggregate(v Value) (any, error) {
	switch n := v.(type) {
	case nil, Null:
		return nil, nil
	case Int:
		return float64(n), nil
	case Float:
		return float64(n), nil
	case BigInt:
		f, _ := new(big.Float).SetInt(n.Int()).Float64()
		return f, nil
	case Decimal:
		f, _ := n.Rat().Float64()
		return f, nil
	case Timestamp:
		return time.Time(n), nil
	default:
		return nil, NewTypeAssertionError(v)
	}
}
