package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"zappem.net/pub/math/brak/matrix"
	"zappem.net/pub/math/brak/terms"
	"zappem.net/pub/math/brak/value"
)

// LinearResult is the outcome of Linear.
type LinearResult struct {
	// Steps is the last step computed. X starts at step 2.
	Steps int
	// Found is set when [X, F(b)] vanished for every b at once.
	Found bool
	// F holds [X, F(b)] at index b-1 after the last step.
	F     [3]*terms.Exp
	RunID string
}

// branch tracks [X, F(b)] and [X, H(b)].
type branch struct {
	b    int
	f, h *terms.Exp
}

// next advances br by one bracket with E(k), given xk = [X, E(k)].
//
//	f' = [f, E(k)] + δ(k, b) h
//	h' = [h, E(k)] - C(b, k) [X, E(k)]
func (br *branch) next(k int, xk *terms.Exp) error {
	c, err := matrix.C(br.b, k)
	if err != nil {
		return err
	}
	ek := value.E(k)
	f := br.f.Bracket(ek)
	if k == br.b {
		f = f.Add(br.h)
	}
	br.h = br.h.Bracket(ek).Sub(xk.Scale(c))
	br.f = f
	return nil
}

// Linear runs all three branches together over collected term lists,
// starting from X = [E(1), E(2)], until every [X, F(b)] is zero at the
// same step. Only the initial [X, F(b)] and [X, H(b)] use the
// rewriter. A steps limit of zero runs until ctx is done.
func (s *Searcher) Linear(ctx context.Context, steps int) (LinearResult, error) {
	var res LinearResult
	log := s.log.With("mode", "linear")

	runID, err := s.begin("linear", 0)
	if err != nil {
		return res, err
	}
	res.RunID = runID

	x0 := value.Brak(value.E(1), value.E(2))
	x := terms.NewExp(x0)
	var brs [3]*branch
	for i := range brs {
		b := i + 1
		f, err := s.rw.Rewrite(value.Brak(x0, value.F(b)))
		if err != nil {
			return res, fmt.Errorf("branch %d f: %w", b, err)
		}
		h, err := s.rw.Rewrite(value.Brak(x0, value.H(b)))
		if err != nil {
			return res, fmt.Errorf("branch %d h: %w", b, err)
		}
		brs[i] = &branch{b: b, f: terms.NewExp(f), h: terms.NewExp(h)}
		log.Debug("initial", "branch", b, "f", brs[i].f, "h", brs[i].h)
	}

	recorded := 0
	var stopped error
	for n := 2; steps <= 0 || n < steps+2; n++ {
		if stopped = ctx.Err(); stopped != nil {
			break
		}
		k := n%3 + 1
		xk := x.Bracket(value.E(k))

		g := new(errgroup.Group)
		for _, br := range brs {
			br := br
			g.Go(func() error {
				return br.next(k, xk)
			})
		}
		if err := g.Wait(); err != nil {
			return res, fmt.Errorf("step %d: %w", n, err)
		}
		x = xk
		res.Steps = n

		zero := true
		for _, br := range brs {
			zero = zero && br.f.IsZero()
		}
		if zero {
			res.Found = true
			log.Info("found zero", "step", n)
			break
		}
		if s.cfg.ReportEvery > 0 && n%s.cfg.ReportEvery == 0 {
			log.Info("checking", "step", n, "terms", x.Len())
			if err := s.linearStep(runID, n, brs); err != nil {
				return res, err
			}
			recorded = n
		}
	}
	if !res.Found {
		log.Info("no zero found", "steps", res.Steps)
	}
	for i, br := range brs {
		res.F[i] = br.f
	}
	if recorded != res.Steps {
		if err := s.linearStep(runID, res.Steps, brs); err != nil {
			return res, err
		}
	}
	r := Result{Steps: res.Steps, Found: res.Found}
	if res.Found {
		r.At = res.Steps
	}
	if err := s.finish(runID, r); err != nil {
		return res, err
	}
	return res, stopped
}

// linearStep records the three F expressions of step n.
func (s *Searcher) linearStep(id string, n int, brs [3]*branch) error {
	if s.db == nil {
		return nil
	}
	var size int
	fs := make([]string, len(brs))
	for i, br := range brs {
		size += br.f.Len()
		fs[i] = br.f.String()
	}
	return s.step(id, n, size, strings.Join(fs, "; "))
}
