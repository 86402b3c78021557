package liveset

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAggregate_NumericZoo(t *testing.T) {
	got, err := normalizeAggregate(Int(42))
	require.NoError(t, err)
	assert.Equal(t, float64(42), got)

	got, err = normalizeAggregate(Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	got, err = normalizeAggregate(NewBigInt(big.NewInt(1 << 53)))
	require.NoError(t, err)
	assert.Equal(t, float64(1<<53), got)

	got, err = normalizeAggregate(NewDecimalFromRat(big.NewRat(1, 4)))
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}

func TestNormalizeAggregate_AbsentIsNil(t *testing.T) {
	got, err := normalizeAggregate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = normalizeAggregate(Null{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeAggregate_TimestampsPassThrough(t *testing.T) {
	ts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := normalizeAggregate(Timestamp(ts))
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}

func TestNormalizeAggregate_UnclassifiableRepresentation(t *testing.T) {
	// Strings and booleans cannot come out of a well-formed aggregate; the
	// dispatch layer refuses rather than coerces.
	_, err := normalizeAggregate(String("oops"))
	require.Error(t, err)
	assert.True(t, IsTypeAssertionError(err))

	_, err = normalizeAggregate(Bool(true))
	require.Error(t, err)
	assert.True(t, IsTypeAssertionError(err))

	_, err = normalizeAggregate(Object{})
	require.Error(t, err)
	assert.True(t, IsTypeAssertionError(err))
}
