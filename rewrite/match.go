package rewrite

import (
	"fmt"

	"zappem.net/pub/math/brak/ast"
	"zappem.net/pub/math/brak/value"
)

// Match unifies pattern with v, adding bindings to s. On failure s
// may hold partial bindings and should be discarded.
func Match(pattern *ast.Node, v *value.Value, s Scope) (bool, error) {
	switch pattern.Op {
	case ast.OpNamed:
		return s.bind(pattern.Name, v), nil
	case ast.OpLiteral:
		return value.Equal(pattern.Value, v), nil
	case ast.OpKind:
		if !v.IsKind() || v.Name() != pattern.Name {
			return false, nil
		}
		return s.bind(pattern.Index, value.N(v.Num())), nil
	case ast.OpNegative:
		if v.Op() != value.OpNegative {
			return false, nil
		}
		return Match(pattern.A, v.Left(), s)
	case ast.OpTable:
		return false, fmt.Errorf("%w: %v", ErrTablePatternForbidden, pattern)
	}
	var op value.Op
	switch pattern.Op {
	case ast.OpBracket:
		op = value.OpBracket
	case ast.OpAdd:
		op = value.OpAdd
	case ast.OpMul:
		op = value.OpMul
	default:
		return false, fmt.Errorf("unknown pattern %v", pattern)
	}
	if v.Op() != op {
		return false, nil
	}
	ok, err := Match(pattern.A, v.Left(), s)
	if !ok || err != nil {
		return false, err
	}
	return Match(pattern.B, v.Right(), s)
}
