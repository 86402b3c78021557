package liveset

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes collection errors.
type ErrorCode string

const (
	// CodeConstruction indicates direct instantiation without a valid
	// backing handle or adapter.
	CodeConstruction ErrorCode = "CONSTRUCTION"

	// CodeBounds indicates a negative index on a write path.
	CodeBounds ErrorCode = "BOUNDS"

	// CodeUnsupported indicates an element write on a read-only collection,
	// or an extension point the base collection does not implement.
	CodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"

	// CodePropertyResolution indicates a property name that cannot be
	// resolved: unknown on the element type, or any name supplied for a
	// collection of primitives.
	CodePropertyResolution ErrorCode = "PROPERTY_RESOLUTION"

	// CodeTypeAssertion indicates the backing collection returned a value
	// representation the dispatch layer cannot classify. This is an
	// internal-consistency violation, not a user-recoverable condition.
	CodeTypeAssertion ErrorCode = "TYPE_ASSERTION"

	// CodeSyntax indicates a malformed query string.
	CodeSyntax ErrorCode = "SYNTAX"
)

// Error is a structured collection error with a category code and the
// fields needed for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the offending index for bounds errors.
	Index int

	// Property is the offending property path, when one is involved.
	Property string

	// Position is the byte offset into the query string for syntax errors.
	Position int
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code == CodeBounds:
		return fmt.Sprintf("%s: %s (index=%d)", e.Code, e.Message, e.Index)
	case e.Code == CodeSyntax:
		return fmt.Sprintf("%s: %s (offset=%d)", e.Code, e.Message, e.Position)
	case e.Property != "":
		return fmt.Sprintf("%s: %s (property=%q)", e.Code, e.Message, e.Property)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// NewConstructionError creates an Error for invalid facade construction.
func NewConstructionError(message string) *Error {
	return &Error{Code: CodeConstruction, Message: message}
}

// NewBoundsError creates an Error for a negative write index.
func NewBoundsError(index int) *Error {
	return &Error{
		Code:    CodeBounds,
		Message: "index must be non-negative",
		Index:   index,
	}
}

// NewUnsupportedError creates an Error for an operation the base read-only
// collection refuses.
func NewUnsupportedError(operation string) *Error {
	return &Error{
		Code:    CodeUnsupported,
		Message: operation + " is not supported on a read-only collection",
	}
}

// NewPropertyResolutionError creates an Error for an unresolvable property.
func NewPropertyResolutionError(property, message string) *Error {
	return &Error{
		Code:     CodePropertyResolution,
		Message:  message,
		Property: property,
	}
}

// NewTypeAssertionError creates an Error for an unclassifiable aggregate
// representation.
func NewTypeAssertionError(got Value) *Error {
	return &Error{
		Code:    CodeTypeAssertion,
		Message: fmt.Sprintf("unexpected aggregate representation %T", got),
	}
}

// NewSyntaxError creates an Error for a malformed query string.
func NewSyntaxError(position int, message string) *Error {
	return &Error{
		Code:     CodeSyntax,
		Message:  message,
		Position: position,
	}
}

// codeOf extracts the ErrorCode from an error, or "" if it is not an *Error.
func codeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConstructionError reports whether err is a construction error.
// Uses errors.As to handle wrapped errors.
func IsConstructionError(err error) bool { return codeOf(err) == CodeConstruction }

// IsBoundsError reports whether err is a bounds error.
func IsBoundsError(err error) bool { return codeOf(err) == CodeBounds }

// IsUnsupportedError reports whether err is an unsupported-operation error.
func IsUnsupportedError(err error) bool { return codeOf(err) == CodeUnsupported }

// IsPropertyResolutionError reports whether err is a property resolution error.
func IsPropertyResolutionError(err error) bool { return codeOf(err) == CodePropertyResolution }

// IsTypeAssertionError reports whether err is a type assertion error.
func IsTypeAssertionError(err error) bool { return codeOf(err) == CodeTypeAssertion }

// IsSyntaxError reports whether err is a query syntax error.
func IsSyntaxError(err error) bool { return codeOf(err) == CodeSyntax }
