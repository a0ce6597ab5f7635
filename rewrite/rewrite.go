package rewrite

import (
	"fmt"
	"log/slog"

	"zappem.net/pub/math/brak/rules"
	"zappem.net/pub/math/brak/value"
)

// DefaultLimit is the number of rule applications a single Rewrite
// call may perform before giving up with ErrNonTerminating.
const DefaultLimit = 1000000

// Rewriter reduces values to a normal form relative to an ordered
// rule set. A Rewriter holds no per-call state and may be shared.
type Rewriter struct {
	rules rules.Set
	limit int
	log   *slog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLimit caps the number of rule applications per Rewrite call. A
// limit of zero or less removes the cap.
func WithLimit(n int) Option {
	return func(r *Rewriter) {
		r.limit = n
	}
}

// WithLogger logs every rule application at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rewriter) {
		r.log = l
	}
}

// New returns a Rewriter for rs. The rule set is not copied and must
// not be modified while the Rewriter is in use.
func New(rs rules.Set, opts ...Option) *Rewriter {
	r := &Rewriter{
		rules: rs,
		limit: DefaultLimit,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Rules returns the rule set of r.
func (r *Rewriter) Rules() rules.Set {
	return r.rules
}

// pass tracks the rule applications of one Rewrite call.
type pass struct {
	*Rewriter
	steps int
}

// Rewrite rewrites v bottom up until no rule applies at any node.
func (r *Rewriter) Rewrite(v *value.Value) (*value.Value, error) {
	p := &pass{Rewriter: r}
	return p.simplify(v)
}

// RewriteString parses and evaluates text in scope s and rewrites
// the result.
func (r *Rewriter) RewriteString(text string, s Scope) (*value.Value, error) {
	v, err := EvalString(text, s)
	if err != nil {
		return nil, err
	}
	return r.Rewrite(v)
}

func (p *pass) simplify(v *value.Value) (*value.Value, error) {
	switch v.Op() {
	case value.OpNumber, value.OpKind:
		return v, nil
	case value.OpNegative:
		a, err := p.simplify(v.Left())
		if err != nil {
			return nil, err
		}
		if n, ok := a.AsNumber(); ok {
			return value.Int(-n), nil
		}
		return p.apply(value.Neg(a))
	}
	a, err := p.simplify(v.Left())
	if err != nil {
		return nil, err
	}
	b, err := p.simplify(v.Right())
	if err != nil {
		return nil, err
	}
	x, xok := a.AsNumber()
	y, yok := b.AsNumber()
	switch v.Op() {
	case value.OpAdd:
		if xok && yok {
			return value.Int(x + y), nil
		}
		return p.apply(value.Add(a, b))
	case value.OpMul:
		if xok && yok {
			return value.Int(x * y), nil
		}
		return p.apply(value.Mul(a, b))
	case value.OpBracket:
		return p.apply(value.Brak(a, b))
	}
	return nil, fmt.Errorf("unknown value %v", v)
}

// apply replaces v with the replacement of the first matching rule,
// itself simplified, or returns v unchanged when nothing matches.
func (p *pass) apply(v *value.Value) (*value.Value, error) {
	for i, rule := range p.rules {
		s := NewScope()
		ok, err := Match(rule.Pattern, v, s)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%v): %w", i+1, rule, err)
		}
		repl := rule.Replacement
		if !ok {
			flipped, can := rule.Pattern.Flip()
			if !can {
				continue
			}
			s = NewScope()
			if ok, err = Match(flipped, v, s); err != nil {
				return nil, fmt.Errorf("rule %d (%v): %w", i+1, rule, err)
			} else if !ok {
				continue
			}
			repl = repl.Negate()
		}
		if p.steps++; p.limit > 0 && p.steps > p.limit {
			return nil, fmt.Errorf("%w: %d rule applications", ErrNonTerminating, p.limit)
		}
		x, err := Eval(repl, s)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%v): %w", i+1, rule, err)
		}
		if p.log != nil {
			p.log.Debug("rule applied", "rule", i+1, "from", v, "to", x)
		}
		return p.simplify(x)
	}
	return v, nil
}
