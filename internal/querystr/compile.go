package querystr

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/rowanvale/liveset"
)

// Compiler compiles query strings to parameterized SQL conditions for the
// SQLite engine.
//
// All values are parameterized, never interpolated. Property paths resolve
// through the key-path mapping supplied per call; the engine that
// constructs the compiler provides the class-level context (self column
// for collections of primitives, column base types for cast decisions).
type Compiler struct {
	selfColumn  string
	columnTypes map[string]string // column name → base type
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithSelfColumn maps the "self" property path of a primitive-element
// collection to its engine column.
func WithSelfColumn(column string) CompilerOption {
	return func(c *Compiler) { c.selfColumn = column }
}

// WithColumnTypes supplies column base types. Decimal columns are stored
// as text and need a numeric cast for ordered comparisons.
func WithColumnTypes(types map[string]string) CompilerOption {
	return func(c *Compiler) { c.columnTypes = types }
}

// New creates a Compiler.
func New(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// compiled is the engine-native form: a parameterized SQL condition.
type compiled struct {
	condition string
	params    []any
}

// Clause implements liveset.CompiledQuery.
func (c compiled) Clause() (string, []any) {
	return c.condition, c.params
}

// Compile parses the query string and compiles it against the positional
// arguments and key-path mapping.
func (c *Compiler) Compile(query string, args []any, keyPaths map[string]string) (liveset.CompiledQuery, error) {
	pred, err := Parse(query)
	if err != nil {
		return nil, err
	}
	sql, params, err := c.compilePredicate(pred, args, keyPaths)
	if err != nil {
		return nil, err
	}
	return compiled{condition: sql, params: params}, nil
}

// compilePredicate compiles one predicate node to a SQL fragment.
func (c *Compiler) compilePredicate(p Predicate, args []any, keyPaths map[string]string) (string, []any, error) {
	switch pred := p.(type) {
	case Cmp:
		return c.compileCmp(pred, args, keyPaths)
	case And:
		return c.compileBinary(pred.Left, pred.Right, "AND", args, keyPaths)
	case Or:
		return c.compileBinary(pred.Left, pred.Right, "OR", args, keyPaths)
	case Not:
		inner, params, err := c.compilePredicate(pred.Inner, args, keyPaths)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileBinary(left, right Predicate, connective string, args []any, keyPaths map[string]string) (string, []any, error) {
	leftSQL, leftParams, err := c.compilePredicate(left, args, keyPaths)
	if err != nil {
		return "", nil, err
	}
	rightSQL, rightParams, err := c.compilePredicate(right, args, keyPaths)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("(%s %s %s)", leftSQL, connective, rightSQL)
	return sql, append(leftParams, rightParams...), nil
}

// compileCmp compiles one comparison. Values are always bound as
// parameters.
func (c *Compiler) compileCmp(cmp Cmp, args []any, keyPaths map[string]string) (string, []any, error) {
	column, err := c.resolveColumn(cmp.Path, cmp.pathPos, keyPaths)
	if err != nil {
		return "", nil, err
	}

	value, err := c.operandValue(cmp.Operand, args)
	if err != nil {
		return "", nil, err
	}

	// NULL operands compare with IS / IS NOT.
	if _, isNull := value.(liveset.Null); isNull {
		switch cmp.Op {
		case OpEq:
			return quoteIdent(column) + " IS NULL", nil, nil
		case OpNe:
			return quoteIdent(column) + " IS NOT NULL", nil, nil
		default:
			return "", nil, liveset.NewSyntaxError(cmp.pathPos,
				fmt.Sprintf("operator %s cannot compare against null", cmp.Op))
		}
	}

	lhs := quoteIdent(column)
	param, err := paramValue(value)
	if err != nil {
		return "", nil, err
	}

	// Decimal columns are stored as text; ordered comparison needs a
	// numeric cast on both sides.
	if c.columnTypes[column] == "decimal" {
		lhs = "CAST(" + quoteIdent(column) + " AS REAL)"
		param = toFloatParam(param)
	}

	switch cmp.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return fmt.Sprintf("%s %s ?", lhs, cmp.Op), []any{param}, nil
	case OpContains:
		return fmt.Sprintf("instr(%s, ?) > 0", lhs), []any{param}, nil
	case OpBeginsWith:
		return fmt.Sprintf("substr(%s, 1, length(?)) = ?", lhs), []any{param, param}, nil
	case OpEndsWith:
		return fmt.Sprintf("substr(%s, -length(?)) = ?", lhs), []any{param, param}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %q", cmp.Op)
	}
}

// resolveColumn maps a property path to an engine column.
func (c *Compiler) resolveColumn(path string, pos int, keyPaths map[string]string) (string, error) {
	if path == liveset.SelfProperty && c.selfColumn != "" {
		return c.selfColumn, nil
	}
	if column, ok := keyPaths[path]; ok {
		return column, nil
	}
	return "", liveset.NewPropertyResolutionError(path, "unknown property in query")
}

// operandValue resolves an operand to a native value, pulling positional
// arguments out of args.
func (c *Compiler) operandValue(o Operand, args []any) (liveset.Value, error) {
	switch operand := o.(type) {
	case Literal:
		return operand.Value, nil
	case Positional:
		if operand.Index >= len(args) {
			return nil, fmt.Errorf("query references argument $%d but only %d argument(s) were supplied",
				operand.Index, len(args))
		}
		v, err := liveset.ToBinding(args[operand.Index])
		if err != nil {
			return nil, fmt.Errorf("argument $%d: %w", operand.Index, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported operand type: %T", o)
	}
}

// paramValue converts a native value to a SQL bind parameter, matching the
// engine's storage encoding.
func paramValue(v liveset.Value) (any, error) {
	switch n := v.(type) {
	case liveset.Int:
		return int64(n), nil
	case liveset.Float:
		return float64(n), nil
	case liveset.Bool:
		if n {
			return int64(1), nil
		}
		return int64(0), nil
	case liveset.String:
		return string(n), nil
	case liveset.Timestamp:
		return n.Time().UnixNano(), nil
	case liveset.Decimal:
		f, _ := n.Rat().Float64()
		return f, nil
	case liveset.BigInt:
		f, _ := new(big.Float).SetInt(n.Int()).Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("value type %T cannot be bound as a query parameter", v)
	}
}

// toFloatParam widens a numeric parameter to float64 for cast comparisons.
func toFloatParam(p any) any {
	switch n := p.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return p
	}
}

// quoteIdent quotes a column name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
