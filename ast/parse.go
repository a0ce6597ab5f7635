package ast

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"zappem.net/pub/math/brak/value"
)

// ErrSyntax is returned (wrapped) for any text that does not follow
// the expression grammar.
var ErrSyntax = errors.New("syntax problem")

// ErrTablePattern is returned (wrapped) when a C(row, col) lookup is
// used where only a pattern is allowed.
var ErrTablePattern = errors.New("C(row, col) not allowed in a pattern")

// TableName is the function-like name used for structure constant
// lookups: C(row, col).
const TableName = "C"

var (
	tok    = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_]*|[0-9]+|[-+*()\[\],]|\s+)`)
	space  = regexp.MustCompile(`^\s+$`)
	symbol = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	digits = regexp.MustCompile(`^[0-9]+$`)
)

// token is a lexical element of an expression and its byte offset.
type token struct {
	text string
	pos  int
}

// split tokenizes an expression, dropping white space.
func split(line string) ([]token, error) {
	var toks []token
	for i := 0; i < len(line); {
		loc := tok.FindStringIndex(line[i:])
		if loc == nil {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, line[i:i+1], i)
		}
		end := i + loc[1]
		if !space.MatchString(line[i:end]) {
			toks = append(toks, token{text: line[i:end], pos: i})
		}
		i = end
	}
	return toks, nil
}

// parser is a recursive descent parser over a token list.
type parser struct {
	src  string
	toks []token
	i    int
}

func (p *parser) peek() string {
	if p.i < len(p.toks) {
		return p.toks[p.i].text
	}
	return ""
}

func (p *parser) errorf(format string, args ...any) error {
	pos := len(p.src)
	if p.i < len(p.toks) {
		pos = p.toks[p.i].pos
	}
	return fmt.Errorf("%w at %d in %q: %s", ErrSyntax, pos, p.src, fmt.Sprintf(format, args...))
}

func (p *parser) expect(t string) error {
	if got := p.peek(); got != t {
		if got == "" {
			return p.errorf("want %q, got end of input", t)
		}
		return p.errorf("want %q, got %q", t, got)
	}
	p.i++
	return nil
}

// sum parses a chain of terms joined with + and -. The chain is
// right nested and "a - b" becomes a + (-b).
func (p *parser) sum() (*Node, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	ns := []*Node{first}
	for {
		op := p.peek()
		if op != "+" && op != "-" {
			break
		}
		p.i++
		n, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			n = Negative(n)
		}
		ns = append(ns, n)
	}
	r := ns[len(ns)-1]
	for i := len(ns) - 2; i >= 0; i-- {
		r = Add(ns[i], r)
	}
	return r, nil
}

// term parses a right nested product.
func (p *parser) term() (*Node, error) {
	a, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.peek() != "*" {
		return a, nil
	}
	p.i++
	b, err := p.term()
	if err != nil {
		return nil, err
	}
	return Mul(a, b), nil
}

// unary parses a leading minus, which negates the whole product that
// follows it.
func (p *parser) unary() (*Node, error) {
	if p.peek() != "-" {
		return p.primary()
	}
	p.i++
	a, err := p.term()
	if err != nil {
		return nil, err
	}
	return Negative(a), nil
}

func (p *parser) primary() (*Node, error) {
	t := p.peek()
	switch {
	case t == "":
		return nil, p.errorf("unexpected end of input")
	case t == "(":
		p.i++
		a, err := p.sum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return a, nil
	case t == "[":
		p.i++
		a, err := p.sum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		b, err := p.sum()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return Bracket(a, b), nil
	case digits.MatchString(t):
		p.i++
		n, err := strconv.Atoi(t)
		if err != nil {
			return nil, p.errorf("bad number %q: %v", t, err)
		}
		return Literal(value.N(n)), nil
	case symbol.MatchString(t):
		p.i++
		if p.peek() != "(" {
			return Named(t), nil
		}
		return p.call(t)
	}
	return nil, p.errorf("unexpected %q", t)
}

// call parses the parenthesized tail of Name(index) or C(row, col).
func (p *parser) call(name string) (*Node, error) {
	p.i++ // "("
	a, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.peek() == "," {
		if name != TableName {
			return nil, p.errorf("%s(...) takes a single index", name)
		}
		p.i++
		b, err := p.sum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return Table(a, b), nil
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	switch {
	case a.Op == OpNamed:
		return Kind(name, a.Name), nil
	case a.Op == OpLiteral && a.Value.IsNumber():
		return Literal(value.Kind(name, a.Value.Num())), nil
	}
	return nil, p.errorf("index of %s must be a number or a name, not %v", name, a)
}

// Parse converts text into a Node. The whole of text must be consumed.
func Parse(text string) (*Node, error) {
	toks, err := split(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.i != len(p.toks) {
		return nil, p.errorf("trailing %q", p.peek())
	}
	return n, nil
}

// MustParse is Parse for fixed expressions known to be valid. It
// panics on error.
func MustParse(text string) *Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}
