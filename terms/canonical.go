package terms

import "zappem.net/pub/math/brak/value"

// kindBefore orders kinds by descending index, then by name.
func kindBefore(a, b *value.Value) bool {
	if a.Num() != b.Num() {
		return a.Num() > b.Num()
	}
	return a.Name() < b.Name()
}

// canon splits v into a sign and a monomial whose brackets are put in
// a fixed order, using [a, b] = -[b, a] for every swap.
//
// Two kinds are ordered with kindBefore. A bracket and a kind always
// become [bracket, kind]. Two brackets keep their order but are each
// made canonical. Other shapes are left alone.
func canon(v *value.Value) (neg bool, m *value.Value) {
	switch v.Op() {
	case value.OpNegative:
		neg, m = canon(v.Left())
		return !neg, m
	case value.OpBracket:
	default:
		return false, v
	}
	a, b := v.Left(), v.Right()
	switch {
	case a.IsKind() && b.IsKind():
		if kindBefore(b, a) {
			return true, value.Brak(b, a)
		}
		return false, v
	case a.IsKind() && b.Op() == value.OpBracket:
		// [k, B] = -[B, k]
		s, bm := canon(b)
		return !s, value.Brak(bm, a)
	case a.Op() == value.OpBracket && b.IsKind():
		s, am := canon(a)
		return s, value.Brak(am, b)
	case a.Op() == value.OpBracket && b.Op() == value.OpBracket:
		sa, am := canon(a)
		sb, bm := canon(b)
		return sa != sb, value.Brak(am, bm)
	}
	return false, v
}

// Canonical returns v with its brackets in canonical order. Any sign
// picked up on the way is a single leading Negative.
func Canonical(v *value.Value) *value.Value {
	neg, m := canon(v)
	if neg {
		return value.Neg(m)
	}
	return m
}
