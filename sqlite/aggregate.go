package sqlite

import (
	"fmt"
	"math/big"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rowanvale/liveset"
	"github.com/rowanvale/liveset/internal/schema"
)

// Aggregates run over the materialized rows in Go rather than in SQL:
// decimal columns are stored as text and need exact rational arithmetic,
// and integer sums must widen beyond int64 instead of overflowing.
// Null elements are skipped throughout.

// Min implements liveset.Backing. Returns Null when no non-null value
// exists.
func (rs *ResultSet) Min(col liveset.Column) (liveset.Value, error) {
	_, index, err := rs.aggregateProperty(col)
	if err != nil {
		return nil, err
	}
	return rs.extremum(index, -1), nil
}

// Max implements liveset.Backing. Returns Null when no non-null value
// exists.
func (rs *ResultSet) Max(col liveset.Column) (liveset.Value, error) {
	_, index, err := rs.aggregateProperty(col)
	if err != nil {
		return nil, err
	}
	return rs.extremum(index, 1), nil
}

// extremum scans for the best value by comparison sign: -1 keeps the
// smallest, 1 the largest.
func (rs *ResultSet) extremum(index, sign int) liveset.Value {
	coll := collate.New(language.Und)
	var best liveset.Value
	for _, r := range rs.rows {
		v := r.values[index]
		if _, isNull := v.(liveset.Null); isNull {
			continue
		}
		if best == nil || compareValues(v, best, coll)*sign > 0 {
			best = v
		}
	}
	if best == nil {
		return liveset.Null{}
	}
	return best
}

// Sum implements liveset.Backing. The sum of no values is the column's
// typed zero, never Null. Integer sums widen to an arbitrary-precision
// result when they leave the int64 range.
func (rs *ResultSet) Sum(col liveset.Column) (liveset.Value, error) {
	p, index, err := rs.aggregateProperty(col)
	if err != nil {
		return nil, err
	}

	switch p.Type {
	case schema.TypeInt:
		sum := new(big.Int)
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Int); ok {
				sum.Add(sum, big.NewInt(int64(n)))
			}
		}
		if sum.IsInt64() {
			return liveset.Int(sum.Int64()), nil
		}
		return liveset.NewBigInt(sum), nil

	case schema.TypeFloat:
		var sum float64
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Float); ok {
				sum += float64(n)
			}
		}
		return liveset.Float(sum), nil

	case schema.TypeDecimal:
		sum := new(big.Rat)
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Decimal); ok {
				sum.Add(sum, n.Rat())
			}
		}
		return liveset.NewDecimalFromRat(sum), nil

	default:
		return nil, fmt.Errorf("cannot sum a %s column", p.Type)
	}
}

// Average implements liveset.Backing. The divisor counts non-null values
// only; when every value is null the result is Null.
func (rs *ResultSet) Average(col liveset.Column) (liveset.Value, error) {
	p, index, err := rs.aggregateProperty(col)
	if err != nil {
		return nil, err
	}

	switch p.Type {
	case schema.TypeInt:
		sum := new(big.Rat)
		count := 0
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Int); ok {
				sum.Add(sum, new(big.Rat).SetInt64(int64(n)))
				count++
			}
		}
		if count == 0 {
			return liveset.Null{}, nil
		}
		sum.Quo(sum, new(big.Rat).SetInt64(int64(count)))
		f, _ := sum.Float64()
		return liveset.Float(f), nil

	case schema.TypeFloat:
		var sum float64
		count := 0
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Float); ok {
				sum += float64(n)
				count++
			}
		}
		if count == 0 {
			return liveset.Null{}, nil
		}
		return liveset.Float(sum / float64(count)), nil

	case schema.TypeDecimal:
		sum := new(big.Rat)
		count := 0
		for _, r := range rs.rows {
			if n, ok := r.values[index].(liveset.Decimal); ok {
				sum.Add(sum, n.Rat())
				count++
			}
		}
		if count == 0 {
			return liveset.Null{}, nil
		}
		sum.Quo(sum, new(big.Rat).SetInt64(int64(count)))
		return liveset.NewDecimalFromRat(sum), nil

	default:
		return nil, fmt.Errorf("cannot average a %s column", p.Type)
	}
}

// aggregateProperty resolves an aggregation column handle against the
// class. The self column denotes the bare value of a primitive element.
func (rs *ResultSet) aggregateProperty(col liveset.Column) (schema.Property, int, error) {
	if col.IsSelf() {
		if !rs.class.Primitive {
			return schema.Property{}, 0, liveset.NewPropertyResolutionError(liveset.SelfProperty,
				fmt.Sprintf("class %s holds records, which have no intrinsic value to aggregate", rs.class.Name))
		}
		return rs.class.Properties[0], 0, nil
	}
	p, index, ok := rs.class.Property(col.Name())
	if !ok {
		return schema.Property{}, 0, liveset.NewPropertyResolutionError(col.Name(),
			fmt.Sprintf("class %s has no such property", rs.class.Name))
	}
	return p, index, nil
}
