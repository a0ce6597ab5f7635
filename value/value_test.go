package value

import "testing"

func TestString(t *testing.T) {
	vs := []struct {
		v *Value
		s string
	}{
		{v: N(3), s: "3"},
		{v: Int(-3), s: "-3"},
		{v: E(1), s: "E(1)"},
		{v: Brak(E(1), F(2)), s: "[E(1), F(2)]"},
		{v: Add(E(1), Neg(F(2))), s: "E(1) - F(2)"},
		{v: Add(Add(E(1), E(2)), E(3)), s: "(E(1) + E(2)) + E(3)"},
		{v: Neg(Add(E(1), E(2))), s: "-(E(1) + E(2))"},
		{v: Mul(N(2), Brak(E(2), E(1))), s: "2 * [E(2), E(1)]"},
		{v: Mul(Int(-2), E(1)), s: "(-2) * E(1)"},
		{v: Mul(N(2), Add(E(1), E(2))), s: "2 * (E(1) + E(2))"},
	}
	for i, x := range vs {
		if s := x.v.String(); s != x.s {
			t.Errorf("[%d] got=%q want=%q", i, s, x.s)
		}
	}
}

func TestInt(t *testing.T) {
	if v := Int(-4); v.Op() != OpNegative || !Equal(v.Left(), N(4)) {
		t.Errorf("Int(-4) = %v, want Negative(Number(4))", v)
	}
	if v := Int(0); !v.IsZero() {
		t.Errorf("Int(0) = %v, want 0", v)
	}
	for _, n := range []int{-7, -1, 0, 1, 12} {
		if got, ok := Int(n).AsNumber(); !ok || got != n {
			t.Errorf("Int(%d).AsNumber() = %d, %v", n, got, ok)
		}
	}
	if got, ok := Neg(Neg(N(5))).AsNumber(); !ok || got != 5 {
		t.Errorf("--5 = %d, %v", got, ok)
	}
	if _, ok := Neg(E(1)).AsNumber(); ok {
		t.Error("-E(1) treated as a number")
	}
}

func TestEqual(t *testing.T) {
	vs := []struct {
		a, b *Value
		want bool
	}{
		{a: E(1), b: E(1), want: true},
		{a: E(1), b: F(1), want: false},
		{a: E(1), b: E(2), want: false},
		{a: Brak(E(1), E(2)), b: Brak(E(1), E(2)), want: true},
		{a: Brak(E(1), E(2)), b: Brak(E(2), E(1)), want: false},
		{a: Brak(E(1), E(2)), b: Mul(E(1), E(2)), want: false},
		{a: Neg(N(1)), b: Int(-1), want: true},
		{a: Neg(N(1)), b: N(1), want: false},
		{a: Add(N(3), N(3)), b: Add(N(3), N(3)), want: true},
	}
	for i, v := range vs {
		if got := Equal(v.a, v.b); got != v.want {
			t.Errorf("[%d] Equal(%v, %v) got=%v want=%v", i, v.a, v.b, got, v.want)
		}
		if v.want && v.a.Hash() != v.b.Hash() {
			t.Errorf("[%d] equal values %v hash differently", i, v.a)
		}
	}
}

func TestNegate(t *testing.T) {
	a := Brak(E(2), E(1))
	if got := Negate(Negate(a)); got != a {
		t.Errorf("double negation not collapsed: %v", got)
	}
	if got := Negate(a); got.Op() != OpNegative || got.Left() != a {
		t.Errorf("Negate(%v) = %v", a, got)
	}
}
