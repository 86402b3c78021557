package querystr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rowanvale/liveset"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokArg
	tokOp
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokTrue
	tokFalse
	tokNull
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset into the query string
	ival int64
	fval float64
}

// lexer produces tokens from a query string. Keywords are matched
// case-insensitively.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// wordTokens maps keyword spellings (upper-cased) to token kinds.
var wordTokens = map[string]tokenKind{
	"AND":        tokAnd,
	"OR":         tokOr,
	"NOT":        tokNot,
	"TRUE":       tokTrue,
	"FALSE":      tokFalse,
	"NULL":       tokNull,
	"CONTAINS":   tokOp,
	"BEGINSWITH": tokOp,
	"ENDSWITH":   tokOp,
}

// next returns the next token, or a syntax error with the byte offset of
// the offending character.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '$':
		return l.lexArg()
	case c == '"' || c == '\'':
		return l.lexString(c)
	case c >= '0' && c <= '9' || c == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] >= '0' && l.input[l.pos+1] <= '9':
		return l.lexNumber()
	case c == '&':
		if strings.HasPrefix(l.input[l.pos:], "&&") {
			l.pos += 2
			return token{kind: tokAnd, text: "&&", pos: start}, nil
		}
		return token{}, liveset.NewSyntaxError(start, "unexpected '&'")
	case c == '|':
		if strings.HasPrefix(l.input[l.pos:], "||") {
			l.pos += 2
			return token{kind: tokOr, text: "||", pos: start}, nil
		}
		return token{}, liveset.NewSyntaxError(start, "unexpected '|'")
	case c == '=' || c == '!' || c == '<' || c == '>':
		return l.lexOperator()
	case isIdentStart(rune(c)):
		return l.lexWord()
	default:
		return token{}, liveset.NewSyntaxError(start, fmt.Sprintf("unexpected character %q", c))
	}
}

func (l *lexer) lexArg() (token, error) {
	start := l.pos
	l.pos++ // consume '$'
	digits := l.pos
	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == digits {
		return token{}, liveset.NewSyntaxError(start, "positional argument requires an index, e.g. $0")
	}
	n, err := strconv.ParseInt(l.input[digits:l.pos], 10, 32)
	if err != nil {
		return token{}, liveset.NewSyntaxError(start, "positional argument index out of range")
	}
	return token{kind: tokArg, text: l.input[start:l.pos], pos: start, ival: n}, nil
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return token{}, liveset.NewSyntaxError(l.pos, "unterminated escape sequence")
			}
			l.pos++
			sb.WriteByte(l.input[l.pos])
			l.pos++
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, liveset.NewSyntaxError(start, "unterminated string literal")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	isFloat := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !isFloat {
			isFloat = true
			l.pos++
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, liveset.NewSyntaxError(start, fmt.Sprintf("invalid number %q", text))
		}
		return token{kind: tokFloat, text: text, pos: start, fval: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, liveset.NewSyntaxError(start, fmt.Sprintf("invalid number %q", text))
	}
	return token{kind: tokInt, text: text, pos: start, ival: n}, nil
}

func (l *lexer) lexOperator() (token, error) {
	start := l.pos
	two := ""
	if l.pos+1 < len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "==", "!=", "<=", ">=":
		l.pos += 2
		return token{kind: tokOp, text: two, pos: start}, nil
	}
	switch l.input[l.pos] {
	case '<', '>':
		l.pos++
		return token{kind: tokOp, text: l.input[start:l.pos], pos: start}, nil
	case '=':
		// Single '=' is accepted as equality for convenience.
		l.pos++
		return token{kind: tokOp, text: "==", pos: start}, nil
	case '!':
		l.pos++
		return token{kind: tokNot, text: "!", pos: start}, nil
	}
	return token{}, liveset.NewSyntaxError(start, "invalid operator")
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(rune(l.input[l.pos])) {
		l.pos++
	}
	word := l.input[start:l.pos]
	if kind, ok := wordTokens[strings.ToUpper(word)]; ok {
		text := word
		if kind == tokOp {
			text = strings.ToUpper(word)
		}
		return token{kind: kind, text: text, pos: start}, nil
	}
	return token{kind: tokIdent, text: word, pos: start}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
