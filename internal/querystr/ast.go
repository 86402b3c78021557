package querystr

import "github.com/rowanvale/liveset"

// Predicate represents a filter condition parsed from a query string.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the SQL backend.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op string

const (
	OpEq         Op = "=="
	OpNe         Op = "!="
	OpLt         Op = "<"
	OpLe         Op = "<="
	OpGt         Op = ">"
	OpGe         Op = ">="
	OpContains   Op = "CONTAINS"
	OpBeginsWith Op = "BEGINSWITH"
	OpEndsWith   Op = "ENDSWITH"
)

// Cmp compares a property path against one operand.
type Cmp struct {
	Path    string
	Op      Op
	Operand Operand

	// pathPos is the byte offset of the path token, kept for resolution
	// error reporting.
	pathPos int
}

func (Cmp) predicateNode() {}

// And requires both sides to hold.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) predicateNode() {}

// Or requires either side to hold.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) predicateNode() {}

// Not inverts its inner predicate.
type Not struct {
	Inner Predicate
}

func (Not) predicateNode() {}

// Operand is the right-hand side of a comparison: a literal value or a
// positional argument reference.
//
// Sealed - only Literal and Positional implement it.
type Operand interface {
	operandNode() // Marker method - seals interface to this package
}

// Literal is a value written directly in the query string.
type Literal struct {
	Value liveset.Value
}

func (Literal) operandNode() {}

// Positional references the n-th positional argument ($n).
type Positional struct {
	Index int

	// pos is the byte offset of the token, for arity error reporting.
	pos int
}

func (Positional) operandNode() {}
