package liveset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code ErrorCode
		is   func(error) bool
	}{
		{"construction", NewConstructionError("no handle"), CodeConstruction, IsConstructionError},
		{"bounds", NewBoundsError(-3), CodeBounds, IsBoundsError},
		{"unsupported", NewUnsupportedError("element assignment"), CodeUnsupported, IsUnsupportedError},
		{"property", NewPropertyResolutionError("salary", "no such property"), CodePropertyResolution, IsPropertyResolutionError},
		{"type assertion", NewTypeAssertionError(String("x")), CodeTypeAssertion, IsTypeAssertionError},
		{"syntax", NewSyntaxError(7, "unexpected token"), CodeSyntax, IsSyntaxError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, tt.is(tt.err))

			// The predicates are mutually exclusive.
			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, other.is(tt.err), "%s matched %s", tt.name, other.name)
				}
			}
		})
	}
}

func TestErrorPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer context: %w", NewBoundsError(-1))
	assert.True(t, IsBoundsError(wrapped))
	assert.False(t, IsBoundsError(fmt.Errorf("plain")))
	assert.False(t, IsBoundsError(nil))
}

func TestErrorMessages_CarryDiagnostics(t *testing.T) {
	assert.Contains(t, NewBoundsError(-2).Error(), "index=-2")
	assert.Contains(t, NewSyntaxError(14, "bad").Error(), "offset=14")
	assert.Contains(t, NewPropertyResolutionError("age", "nope").Error(), `property="age"`)
	assert.Contains(t, NewUnsupportedError("flat").Error(), "read-only collection")
	assert.Contains(t, NewTypeAssertionError(Bool(true)).Error(), "liveset.Bool")
}

func TestErrorFields(t *testing.T) {
	err := NewSyntaxError(22, "unexpected '('")
	require.Equal(t, 22, err.Position)

	perr := NewPropertyResolutionError("balance", "unknown")
	require.Equal(t, "balance", perr.Property)

	berr := NewBoundsError(-5)
	require.Equal(t, -5, berr.Index)
}
