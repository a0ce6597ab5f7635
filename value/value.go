// Package value defines the evaluated expression tree of the bracket
// algebra: integers, kinds, negation, sums, products and brackets.
package value

import (
	"fmt"
	"strconv"

	"github.com/segmentio/fasthash/fnv1a"
)

// Op identifies the shape of a Value node.
type Op int

const (
	OpNumber Op = iota
	OpKind
	OpNegative
	OpAdd
	OpMul
	OpBracket
)

// Value is an immutable node of an algebraic expression. Values are
// built with the constructors in this package and are never modified
// after construction, so subtrees may be shared freely.
type Value struct {
	op   Op
	num  int
	name string
	a, b *Value
}

// Op returns the node kind of v.
func (v *Value) Op() Op {
	return v.op
}

// Num returns the integer held by a Number, or the index of a Kind.
func (v *Value) Num() int {
	return v.num
}

// Name returns the generator family name of a Kind.
func (v *Value) Name() string {
	return v.name
}

// Left returns the first operand of a binary node, or the operand of a
// Negative.
func (v *Value) Left() *Value {
	return v.a
}

// Right returns the second operand of a binary node.
func (v *Value) Right() *Value {
	return v.b
}

// N wraps a raw integer. Use Int for values that may be negative.
func N(n int) *Value {
	return &Value{op: OpNumber, num: n}
}

// Int converts n to a Number, keeping negative numbers as
// Negative(Number(-n)).
func Int(n int) *Value {
	if n < 0 {
		return Neg(N(-n))
	}
	return N(n)
}

// Zero is the literal zero value.
func Zero() *Value {
	return N(0)
}

// One is the literal one value.
func One() *Value {
	return N(1)
}

// Kind returns the generator name(index).
func Kind(name string, index int) *Value {
	return &Value{op: OpKind, name: name, num: index}
}

// E, F and H are the three generator families of the algebra.
func E(n int) *Value { return Kind("E", n) }
func F(n int) *Value { return Kind("F", n) }
func H(n int) *Value { return Kind("H", n) }

// Neg wraps v in a Negative node.
func Neg(v *Value) *Value {
	return &Value{op: OpNegative, a: v}
}

// Negate returns -v, unwrapping an existing Negative instead of
// stacking a second one.
func Negate(v *Value) *Value {
	if v.op == OpNegative {
		return v.a
	}
	return Neg(v)
}

// Add returns the sum a + b.
func Add(a, b *Value) *Value {
	return &Value{op: OpAdd, a: a, b: b}
}

// Mul returns the product a * b.
func Mul(a, b *Value) *Value {
	return &Value{op: OpMul, a: a, b: b}
}

// Brak returns the bracket [a, b].
func Brak(a, b *Value) *Value {
	return &Value{op: OpBracket, a: a, b: b}
}

// IsNumber indicates that v is a Number leaf.
func (v *Value) IsNumber() bool {
	return v.op == OpNumber
}

// IsKind indicates that v is a Kind leaf.
func (v *Value) IsKind() bool {
	return v.op == OpKind
}

// IsZero confirms v is the literal zero.
func (v *Value) IsZero() bool {
	return v != nil && v.op == OpNumber && v.num == 0
}

// AsNumber returns the integer value of a Number, possibly wrapped in
// any number of Negative nodes. The boolean is false for every other
// shape.
func (v *Value) AsNumber() (int, bool) {
	switch v.op {
	case OpNumber:
		return v.num, true
	case OpNegative:
		n, ok := v.a.AsNumber()
		return -n, ok
	}
	return 0, false
}

// Equal compares two values structurally.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.op != b.op {
		return false
	}
	switch a.op {
	case OpNumber:
		return a.num == b.num
	case OpKind:
		return a.num == b.num && a.name == b.name
	case OpNegative:
		return Equal(a.a, b.a)
	}
	return Equal(a.a, b.a) && Equal(a.b, b.b)
}

// Equal is the method form of Equal.
func (v *Value) Equal(x *Value) bool {
	return Equal(v, x)
}

// Hash returns an FNV-1a digest of the structure of v. Structurally
// equal values always hash equally.
func (v *Value) Hash() uint64 {
	return v.hash(fnv1a.Init64)
}

func (v *Value) hash(h uint64) uint64 {
	h = fnv1a.AddUint64(h, uint64(v.op))
	switch v.op {
	case OpNumber:
		return fnv1a.AddUint64(h, uint64(v.num))
	case OpKind:
		h = fnv1a.AddString64(h, v.name)
		return fnv1a.AddUint64(h, uint64(v.num))
	case OpNegative:
		return v.a.hash(h)
	}
	return v.b.hash(v.a.hash(h))
}

// String displays v in the syntax accepted by the ast parser.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.op {
	case OpNumber:
		return strconv.Itoa(v.num)
	case OpKind:
		return fmt.Sprintf("%s(%d)", v.name, v.num)
	case OpNegative:
		if v.a.op == OpAdd {
			return fmt.Sprintf("-(%v)", v.a)
		}
		return "-" + v.a.String()
	case OpAdd:
		left := v.a.String()
		if v.a.op == OpAdd {
			left = "(" + left + ")"
		}
		if v.b.op == OpNegative && v.b.a.op != OpAdd {
			return fmt.Sprintf("%s - %v", left, v.b.a)
		}
		return fmt.Sprintf("%s + %v", left, v.b)
	case OpMul:
		left, right := v.a.String(), v.b.String()
		switch v.a.op {
		case OpAdd, OpMul, OpNegative:
			left = "(" + left + ")"
		}
		if v.b.op == OpAdd {
			right = "(" + right + ")"
		}
		return left + " * " + right
	case OpBracket:
		return fmt.Sprintf("[%v, %v]", v.a, v.b)
	}
	return "<ERROR>"
}
