// Package querystr compiles query strings into engine-native predicates.
//
// The query language is a small comparison grammar over element
// properties:
//
//	age > $0 AND (name CONTAINS "an" OR active == true)
//
// Comparison operators: ==, !=, <, <=, >, >=, CONTAINS, BEGINSWITH,
// ENDSWITH. Connectives: AND/&&, OR/||, NOT/!. Literals: integers,
// floats, quoted strings, true/false, null. $0, $1, ... reference
// positional arguments supplied alongside the query string.
//
// ARCHITECTURE:
//
// The compiler is split into three stages behind one entry point:
//
//	[query string] → lexer → parser → predicate AST → SQL fragment
//
// Predicate and Operand are sealed interfaces using the marker method
// pattern, so the SQL backend can type-switch exhaustively and an
// unmatched node is a compile-time smell rather than a runtime probe.
//
// Property paths are resolved through a key-path mapping supplied by the
// caller's schema context; unknown paths fail with a property resolution
// error, malformed input with a syntax error carrying the byte offset.
// All literal and positional values are parameterized, never interpolated.
package querystr
