package liveset

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBinding_HostDispatch(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		host any
		want Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"int32", int32(7), Int(7)},
		{"int64", int64(-9), Int(-9)},
		{"float32", float32(1.5), Float(1.5)},
		{"float64", 2.25, Float(2.25)},
		{"string", "hi", String("hi")},
		{"time", ts, Timestamp(ts)},
		{"native passthrough", Int(3), Int(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBinding(tt.host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBinding_BigNumerics(t *testing.T) {
	i := big.NewInt(1 << 40)
	got, err := ToBinding(i)
	require.NoError(t, err)
	bi, ok := got.(BigInt)
	require.True(t, ok)
	assert.Zero(t, bi.Int().Cmp(i))

	r := big.NewRat(25, 8)
	got, err = ToBinding(r)
	require.NoError(t, err)
	d, ok := got.(Decimal)
	require.True(t, ok)
	assert.Zero(t, d.Rat().Cmp(r))
}

func TestToBinding_RecordMap(t *testing.T) {
	got, err := ToBinding(map[string]any{"name": "Ada", "age": 36})
	require.NoError(t, err)
	assert.Equal(t, Object{"name": String("Ada"), "age": Int(36)}, got)

	_, err = ToBinding(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `property "bad"`)
}

func TestToBinding_UnsupportedHost(t *testing.T) {
	_, err := ToBinding(struct{}{})
	require.Error(t, err)

	_, err = ToBinding([]int{1})
	require.Error(t, err)
}

func TestFromBinding_RoundsToHostTypes(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, FromBinding(Null{}))
	assert.Equal(t, int64(5), FromBinding(Int(5)))
	assert.Equal(t, 1.5, FromBinding(Float(1.5)))
	assert.Equal(t, true, FromBinding(Bool(true)))
	assert.Equal(t, "x", FromBinding(String("x")))
	assert.Equal(t, ts, FromBinding(Timestamp(ts)))

	obj := Object{"n": Int(1), "inner": Object{"s": String("y")}}
	assert.Equal(t,
		map[string]any{"n": int64(1), "inner": map[string]any{"s": "y"}},
		FromBinding(obj))
}

func TestScalarAdapter_TypeChecking(t *testing.T) {
	a := NewScalarAdapter("int", false)
	assert.Equal(t, "int", a.BaseTypeName())
	assert.False(t, a.IsNullable())

	v, err := a.ToBinding(42)
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	_, err = a.ToBinding("not an int")
	require.Error(t, err)

	_, err = a.ToBinding(nil)
	require.Error(t, err, "nil rejected for non-nullable elements")
}

func TestScalarAdapter_Nullable(t *testing.T) {
	a := NewScalarAdapter("string", true)
	v, err := a.ToBinding(nil)
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)
}

func TestScalarAdapter_DecimalAcceptsBothPrecisionForms(t *testing.T) {
	a := NewScalarAdapter("decimal", false)

	_, err := a.ToBinding(big.NewRat(1, 3))
	require.NoError(t, err)

	_, err = a.ToBinding(big.NewInt(9))
	require.NoError(t, err)

	_, err = a.ToBinding(1.5)
	require.Error(t, err, "plain floats do not carry decimal precision")
}

func TestRecordAdapter(t *testing.T) {
	a := NewRecordAdapter("Person", false)
	assert.Equal(t, "Person", a.BaseTypeName())

	v, err := a.ToBinding(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, Object{"name": String("Ada")}, v)

	_, err = a.ToBinding("not a map")
	require.Error(t, err)

	host := a.FromBinding(Object{"name": String("Ada")})
	assert.Equal(t, map[string]any{"name": "Ada"}, host)
}
