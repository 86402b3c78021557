package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rowanvale/liveset"
)

func TestParseArg(t *testing.T) {
	assert.Equal(t, int64(42), parseArg("42"))
	assert.Equal(t, int64(-7), parseArg("-7"))
	assert.Equal(t, 2.5, parseArg("2.5"))
	assert.Equal(t, true, parseArg("true"))
	assert.Equal(t, "Ada", parseArg("Ada"))
	assert.Equal(t, "", parseArg(""))
}

func TestParseSortSpec(t *testing.T) {
	assert.Equal(t, []any{
		[]any{"name", false},
		[]any{"age", true},
	}, parseSortSpec("name,-age"))

	assert.Equal(t, []any{[]any{"name", false}}, parseSortSpec(" name , "))
	assert.Nil(t, parseSortSpec(""))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "SYNTAX", errorCode(liveset.NewSyntaxError(3, "unexpected token")))
	assert.Equal(t, "PROPERTY_RESOLUTION",
		errorCode(fmt.Errorf("compile: %w", liveset.NewPropertyResolutionError("salary", "no such property"))))
	assert.Equal(t, "ERROR", errorCode(errors.New("disk full")))
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
}
