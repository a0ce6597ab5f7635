// Package rewrite evaluates ast nodes into values and reduces values
// to a normal form with an ordered rule set.
package rewrite

import (
	"errors"
	"fmt"

	"zappem.net/pub/math/brak/ast"
	"zappem.net/pub/math/brak/matrix"
	"zappem.net/pub/math/brak/value"
)

var (
	ErrUnboundVariable       = errors.New("unbound variable")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrTableIndexOutOfRange  = errors.New("structure constant index out of range")
	ErrTablePatternForbidden = ast.ErrTablePattern
	ErrNonTerminating        = errors.New("rewrite limit exceeded")
)

// Scope binds names to values. Within a single match the first
// binding of a name wins and later occurrences must agree with it.
type Scope map[string]*value.Value

// NewScope returns an empty scope.
func NewScope() Scope {
	return make(Scope)
}

// Set binds name to v, replacing any earlier binding.
func (s Scope) Set(name string, v *value.Value) {
	s[name] = v
}

// SetInt binds name to the integer n.
func (s Scope) SetInt(name string, n int) {
	s[name] = value.Int(n)
}

// Get returns the value bound to name.
func (s Scope) Get(name string) (*value.Value, bool) {
	v, ok := s[name]
	return v, ok
}

// bind records v for name unless name is already bound, in which
// case the existing value must equal v.
func (s Scope) bind(name string, v *value.Value) bool {
	if old, ok := s[name]; ok {
		return value.Equal(old, v)
	}
	s[name] = v
	return true
}

// number returns the non-negative integer held by name.
func (s Scope) number(name string) (int, error) {
	v, ok := s[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, name)
	}
	if !v.IsNumber() {
		return 0, fmt.Errorf("%w: expected a number for %s, got %v", ErrTypeMismatch, name, v)
	}
	return v.Num(), nil
}

// Eval builds the value described by n, resolving names from s.
func Eval(n *ast.Node, s Scope) (*value.Value, error) {
	switch n.Op {
	case ast.OpNamed:
		v, ok := s.Get(n.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVariable, n.Name)
		}
		return v, nil
	case ast.OpLiteral:
		return n.Value, nil
	case ast.OpKind:
		i, err := s.number(n.Index)
		if err != nil {
			return nil, err
		}
		return value.Kind(n.Name, i), nil
	case ast.OpNegative:
		a, err := Eval(n.A, s)
		if err != nil {
			return nil, err
		}
		return value.Neg(a), nil
	case ast.OpTable:
		return table(n, s)
	}
	a, err := Eval(n.A, s)
	if err != nil {
		return nil, err
	}
	b, err := Eval(n.B, s)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpBracket:
		return value.Brak(a, b), nil
	case ast.OpAdd:
		return value.Add(a, b), nil
	case ast.OpMul:
		return value.Mul(a, b), nil
	}
	return nil, fmt.Errorf("unknown node %v", n)
}

// table evaluates C(row, col) with the structure constants.
func table(n *ast.Node, s Scope) (*value.Value, error) {
	var idx [2]int
	for i, x := range []*ast.Node{n.A, n.B} {
		v, err := Eval(x, s)
		if err != nil {
			return nil, err
		}
		k, ok := v.AsNumber()
		if !ok {
			return nil, fmt.Errorf("%w: C index %v is not a number", ErrTypeMismatch, v)
		}
		idx[i] = k
	}
	c, err := matrix.C(idx[0], idx[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableIndexOutOfRange, err)
	}
	return value.Int(c), nil
}

// EvalString parses and evaluates text in scope s.
func EvalString(text string, s Scope) (*value.Value, error) {
	n, err := ast.Parse(text)
	if err != nil {
		return nil, err
	}
	return Eval(n, s)
}
