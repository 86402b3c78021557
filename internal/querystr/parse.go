package querystr

import (
	"fmt"

	"github.com/rowanvale/liveset"
)

// Parse parses a query string into a predicate AST. Malformed input fails
// with a syntax error carrying the byte offset of the problem.
func Parse(query string) (Predicate, error) {
	p := &parser{lex: newLexer(query)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, liveset.NewSyntaxError(p.cur.pos,
			fmt.Sprintf("unexpected %q after predicate", p.cur.text))
	}
	return pred, nil
}

// parser is a recursive-descent parser with one token of lookahead.
// Precedence, loosest first: OR, AND, NOT, comparison.
type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Predicate, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	switch p.cur.kind {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, liveset.NewSyntaxError(p.cur.pos, "expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		return p.parseComparison()

	case tokEOF:
		return nil, liveset.NewSyntaxError(p.cur.pos, "unexpected end of query")

	default:
		return nil, liveset.NewSyntaxError(p.cur.pos,
			fmt.Sprintf("unexpected %q: property path expected", p.cur.text))
	}
}

func (p *parser) parseComparison() (Predicate, error) {
	path := p.cur.text
	pathPos := p.cur.pos
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.kind != tokOp {
		return nil, liveset.NewSyntaxError(p.cur.pos,
			fmt.Sprintf("expected comparison operator after %q", path))
	}
	op := Op(p.cur.text)
	if err := p.advance(); err != nil {
		return nil, err
	}

	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Cmp{Path: path, Op: op, Operand: operand, pathPos: pathPos}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	tok := p.cur
	var operand Operand
	switch tok.kind {
	case tokArg:
		operand = Positional{Index: int(tok.ival), pos: tok.pos}
	case tokInt:
		operand = Literal{Value: liveset.Int(tok.ival)}
	case tokFloat:
		operand = Literal{Value: liveset.Float(tok.fval)}
	case tokString:
		operand = Literal{Value: liveset.String(tok.text)}
	case tokTrue:
		operand = Literal{Value: liveset.Bool(true)}
	case tokFalse:
		operand = Literal{Value: liveset.Bool(false)}
	case tokNull:
		operand = Literal{Value: liveset.Null{}}
	default:
		return nil, liveset.NewSyntaxError(tok.pos,
			fmt.Sprintf("unexpected %q: literal or positional argument expected", tok.text))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return operand, nil
}
