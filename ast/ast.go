// Package ast holds the unevaluated pattern and expression language of
// rule files. A Node is turned into a value.Value by the rewrite
// package.
package ast

import (
	"fmt"

	"zappem.net/pub/math/brak/value"
)

// Op identifies the shape of a Node.
type Op int

const (
	OpNamed Op = iota
	OpLiteral
	OpBracket
	OpAdd
	OpMul
	OpKind
	OpNegative
	OpTable
)

// Node is one element of a parsed pattern or expression. Nodes are
// immutable once built.
type Node struct {
	Op Op
	// Name is the variable name of OpNamed, or the generator family
	// of OpKind.
	Name string
	// Index is the variable holding the index of an OpKind.
	Index string
	// Value is the embedded concrete value of an OpLiteral.
	Value *value.Value
	// A and B are the operands of compound nodes. OpNegative uses A.
	A, B *Node
}

// Named references a pattern variable or a bound name.
func Named(name string) *Node {
	return &Node{Op: OpNamed, Name: name}
}

// Literal embeds a concrete value.
func Literal(v *value.Value) *Node {
	return &Node{Op: OpLiteral, Value: v}
}

// Bracket is the node [a, b].
func Bracket(a, b *Node) *Node {
	return &Node{Op: OpBracket, A: a, B: b}
}

// Add is the node a + b.
func Add(a, b *Node) *Node {
	return &Node{Op: OpAdd, A: a, B: b}
}

// Mul is the node a * b.
func Mul(a, b *Node) *Node {
	return &Node{Op: OpMul, A: a, B: b}
}

// Kind is a generator whose index is held by the variable index.
func Kind(name, index string) *Node {
	return &Node{Op: OpKind, Name: name, Index: index}
}

// Negative is the node -a.
func Negative(a *Node) *Node {
	return &Node{Op: OpNegative, A: a}
}

// Table looks up the structure constant C(row, col).
func Table(row, col *Node) *Node {
	return &Node{Op: OpTable, A: row, B: col}
}

// Flip returns a bracket node with its operands swapped. The boolean
// is false when n is not a bracket.
func (n *Node) Flip() (*Node, bool) {
	if n.Op != OpBracket {
		return nil, false
	}
	return Bracket(n.B, n.A), true
}

// Negate wraps n in a Negative node.
func (n *Node) Negate() *Node {
	return Negative(n)
}

// HasTable reports whether a Table node appears anywhere in n.
func (n *Node) HasTable() bool {
	if n == nil {
		return false
	}
	if n.Op == OpTable {
		return true
	}
	return n.A.HasTable() || n.B.HasTable()
}

// String displays n in parseable form.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case OpNamed:
		return n.Name
	case OpLiteral:
		if n.Value.Op() == value.OpNegative || n.Value.Op() == value.OpAdd {
			return "(" + n.Value.String() + ")"
		}
		return n.Value.String()
	case OpBracket:
		return fmt.Sprintf("[%v, %v]", n.A, n.B)
	case OpAdd:
		if n.B.Op == OpNegative {
			return fmt.Sprintf("%v - %v", group(n.A, OpAdd), n.B.A)
		}
		return fmt.Sprintf("%v + %v", group(n.A, OpAdd), n.B)
	case OpMul:
		return fmt.Sprintf("%v * %v", group(n.A, OpAdd, OpMul, OpNegative), group(n.B, OpAdd))
	case OpKind:
		return fmt.Sprintf("%s(%s)", n.Name, n.Index)
	case OpNegative:
		return "-" + group(n.A, OpAdd)
	case OpTable:
		return fmt.Sprintf("C(%v, %v)", n.A, n.B)
	}
	return "<ERROR>"
}

// group parenthesizes n when its shape is one of ops.
func group(n *Node, ops ...Op) string {
	for _, op := range ops {
		if n.Op == op {
			return "(" + n.String() + ")"
		}
	}
	return n.String()
}
