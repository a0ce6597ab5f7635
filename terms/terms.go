// Package terms abstracts integer linear combinations of bracket
// monomials.
package terms

import "zappem.net/pub/math/brak/value"

// Term is a product of an integer coefficient and a canonical
// monomial.
type Term struct {
	Coeff int
	Mono  *value.Value

	hash uint64
}

// Value converts a Term into a stand alone value: m, -m, n * m or
// -(n * m).
func (t Term) Value() *value.Value {
	if value.Equal(t.Mono, value.One()) {
		return value.Int(t.Coeff)
	}
	switch {
	case t.Coeff == 1:
		return t.Mono
	case t.Coeff == -1:
		return value.Neg(t.Mono)
	case t.Coeff < 0:
		return value.Neg(value.Mul(value.N(-t.Coeff), t.Mono))
	}
	return value.Mul(value.N(t.Coeff), t.Mono)
}

// Exp is an expression or sum of terms. Terms keep the order in
// which their monomials were first seen.
type Exp struct {
	terms []Term
}

// split strips leading signs and numeric factors from a summand and
// returns the coefficient and canonical monomial that remain.
func split(v *value.Value) (int, *value.Value) {
	if n, ok := v.AsNumber(); ok {
		return n, value.One()
	}
	c := 1
strip:
	for {
		switch v.Op() {
		case value.OpNegative:
			c = -c
			v = v.Left()
		case value.OpMul:
			n, ok := v.Left().AsNumber()
			if !ok {
				break strip
			}
			c *= n
			v = v.Right()
		default:
			break strip
		}
	}
	if n, ok := v.AsNumber(); ok {
		return c * n, value.One()
	}
	neg, m := canon(v)
	if neg {
		c = -c
	}
	return c, m
}

// summands lists the operands of a tree of Add nodes, left to right.
func summands(v *value.Value, vs []*value.Value) []*value.Value {
	for v.Op() == value.OpAdd {
		vs = summands(v.Left(), vs)
		v = v.Right()
	}
	return append(vs, v)
}

// NewExp creates a new expression from the summands of v.
func NewExp(v *value.Value) *Exp {
	e := &Exp{}
	for _, s := range summands(v, nil) {
		c, m := split(s)
		e.insert(c, m, m.Hash())
	}
	return e.compact()
}

// Collect merges the structurally equal monomials of the sum v and
// returns the result as a right nested sum, or zero when every
// coefficient cancels.
func Collect(v *value.Value) *value.Value {
	return NewExp(v).Value()
}

// insert merges a coefficient, monomial pair into the first term
// with an equal monomial, or appends it. Zero coefficients are kept
// until compact.
func (e *Exp) insert(c int, m *value.Value, h uint64) {
	for i := range e.terms {
		t := &e.terms[i]
		if t.hash == h && value.Equal(t.Mono, m) {
			t.Coeff += c
			return
		}
	}
	e.terms = append(e.terms, Term{Coeff: c, Mono: m, hash: h})
}

// compact drops terms with zero coefficients.
func (e *Exp) compact() *Exp {
	ts := e.terms[:0]
	for _, t := range e.terms {
		if t.Coeff != 0 {
			ts = append(ts, t)
		}
	}
	e.terms = ts
	return e
}

// IsZero confirms a simplified expression is zero.
func (e *Exp) IsZero() bool {
	return e == nil || len(e.terms) == 0
}

// Len is the number of terms in e.
func (e *Exp) Len() int {
	if e == nil {
		return 0
	}
	return len(e.terms)
}

// Value rebuilds e as a right nested sum of its terms.
func (e *Exp) Value() *value.Value {
	if e.IsZero() {
		return value.Zero()
	}
	r := e.terms[len(e.terms)-1].Value()
	for i := len(e.terms) - 2; i >= 0; i-- {
		r = value.Add(e.terms[i].Value(), r)
	}
	return r
}

// String represents an expression of Terms as a string.
func (e *Exp) String() string {
	return e.Value().String()
}

// Sum adds together expressions. With only one argument, Sum is a
// simple duplicate function.
func Sum(as ...*Exp) *Exp {
	e := &Exp{}
	for _, a := range as {
		if a == nil {
			continue
		}
		for _, t := range a.terms {
			e.insert(t.Coeff, t.Mono, t.hash)
		}
	}
	return e.compact()
}

// Add adds together two expressions and returns a single expression:
// a+b.
func (a *Exp) Add(b *Exp) *Exp {
	return Sum(a, b)
}

// Sub subtracts b from a into a new expression.
func (a *Exp) Sub(b *Exp) *Exp {
	return Sum(a, b.Scale(-1))
}

// Scale multiplies every coefficient of e by n.
func (e *Exp) Scale(n int) *Exp {
	a := &Exp{}
	if e == nil || n == 0 {
		return a
	}
	for _, t := range e.terms {
		t.Coeff *= n
		a.terms = append(a.terms, t)
	}
	return a
}

// Bracket returns [e, k], bracketing every monomial of e on the right
// with k and putting the result back in canonical order. Scalar terms
// vanish.
func (e *Exp) Bracket(k *value.Value) *Exp {
	a := &Exp{}
	if e == nil {
		return a
	}
	for _, t := range e.terms {
		if t.Mono.IsNumber() || value.Equal(t.Mono, k) {
			continue // [n, k] = [k, k] = 0
		}
		neg, m := canon(value.Brak(t.Mono, k))
		c := t.Coeff
		if neg {
			c = -c
		}
		a.insert(c, m, m.Hash())
	}
	return a.compact()
}
