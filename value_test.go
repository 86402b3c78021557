package liveset

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_WithinRepresentation(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.True(t, Equal(Null{}, Null{}))
	assert.True(t, Equal(Int(3), Int(3)))
	assert.True(t, Equal(Float(3), Float(3)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(Bool(false), Bool(false)))
	assert.True(t, Equal(Timestamp(ts), Timestamp(ts.In(time.FixedZone("X", 3600)))),
		"timestamps compare by instant, not zone")

	assert.False(t, Equal(Int(3), Int(4)))
	assert.False(t, Equal(String("a"), String("b")))
}

func TestEqual_NeverCrossesRepresentations(t *testing.T) {
	// An Int never equals a Float, even for the same mathematical value.
	assert.False(t, Equal(Int(3), Float(3)))
	assert.False(t, Equal(Float(3), Int(3)))
	assert.False(t, Equal(Int(0), Null{}))
	assert.False(t, Equal(Bool(false), Int(0)))
	assert.False(t, Equal(String("3"), Int(3)))
}

func TestEqual_Precision(t *testing.T) {
	a := NewBigInt(big.NewInt(1 << 50))
	b := NewBigInt(big.NewInt(1 << 50))
	c := NewBigInt(big.NewInt(1<<50 + 1))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))

	x := NewDecimalFromRat(big.NewRat(1, 3))
	y := NewDecimalFromRat(big.NewRat(2, 6))
	assert.True(t, Equal(x, y), "rationals compare in lowest terms")
}

func TestEqual_Objects(t *testing.T) {
	a := Object{"n": Int(1), "s": String("x")}
	b := Object{"s": String("x"), "n": Int(1)}
	assert.True(t, Equal(a, b))

	assert.False(t, Equal(a, Object{"n": Int(1)}))
	assert.False(t, Equal(a, Object{"n": Int(1), "s": String("y")}))
	assert.False(t, Equal(a, Object{"n": Int(1), "t": String("x")}))
}

func TestBigInt_CopiesOnConstructionAndAccess(t *testing.T) {
	src := big.NewInt(100)
	b := NewBigInt(src)
	src.SetInt64(999)
	assert.Zero(t, b.Int().Cmp(big.NewInt(100)), "construction copies the argument")

	out := b.Int()
	out.SetInt64(5)
	assert.Zero(t, b.Int().Cmp(big.NewInt(100)), "accessor returns a copy")
}

func TestDecimal_ParseAndFormat(t *testing.T) {
	d, err := NewDecimal("12.375")
	require.NoError(t, err)
	assert.Equal(t, "12.375", d.String())

	_, err = NewDecimal("not a number")
	require.Error(t, err)

	whole, err := NewDecimal("42")
	require.NoError(t, err)
	assert.Equal(t, "42", whole.String(), "trailing point and zeros trimmed")

	third := NewDecimalFromRat(big.NewRat(1, 3))
	assert.Equal(t, "0.333333333333", third.String(), "formatting caps at 12 fractional digits")
}

func TestZeroValueWrappers_AreSafe(t *testing.T) {
	var b BigInt
	assert.Zero(t, b.Int().Sign())

	var d Decimal
	assert.Zero(t, d.Rat().Sign())
	assert.Equal(t, "0", d.String())
}
