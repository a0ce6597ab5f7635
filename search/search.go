// Package search looks for a chain X(n+1) = [X(n), E(n mod 3 + 1)]
// whose bracket with F(b) vanishes.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tevino/abool/v2"
	"golang.org/x/sync/errgroup"

	"zappem.net/pub/math/brak/ast"
	"zappem.net/pub/math/brak/config"
	"zappem.net/pub/math/brak/rewrite"
	"zappem.net/pub/math/brak/store"
	"zappem.net/pub/math/brak/terms"
	"zappem.net/pub/math/brak/value"
)

// Recorder persists runs. *store.Store is a Recorder.
type Recorder interface {
	NewRun(mode string, branch int, rules string) (*store.Run, error)
	AddStep(id string, n, terms int, expr string) error
	Finish(id string, steps int, found bool, at int) error
}

// Result is the outcome of one branch of a search.
type Result struct {
	Branch int
	// Steps is the number of steps completed.
	Steps int
	Found bool
	// At is the step after which F vanished.
	At int
	// F is the last value of [X(n), F(b)].
	F *value.Value
	// RunID identifies the stored run, if any.
	RunID string
}

// recurrence holds the parsed recurrence expressions.
type recurrence struct {
	x0, f0, h0, next, fHit, fMiss, h *ast.Node
}

// Searcher runs searches with a fixed rewriter and configuration.
type Searcher struct {
	rw  *rewrite.Rewriter
	cfg config.SearchConfig
	rec recurrence
	log *slog.Logger
	db  Recorder
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		s.log = l
	}
}

// WithRecorder stores every run and step in db.
func WithRecorder(db Recorder) Option {
	return func(s *Searcher) {
		s.db = db
	}
}

// New parses the recurrence expressions of c.
func New(rw *rewrite.Rewriter, c config.Config, opts ...Option) (*Searcher, error) {
	s := &Searcher{
		rw:  rw,
		cfg: c.Search,
		log: slog.Default(),
	}
	r := c.Recurrence
	for _, x := range []struct {
		name string
		text string
		to   **ast.Node
	}{
		{"x0", r.X0, &s.rec.x0},
		{"f0", r.F0, &s.rec.f0},
		{"h0", r.H0, &s.rec.h0},
		{"next", r.Next, &s.rec.next},
		{"f_hit", r.FHit, &s.rec.fHit},
		{"f_miss", r.FMiss, &s.rec.fMiss},
		{"h", r.H, &s.rec.h},
	} {
		n, err := ast.Parse(x.text)
		if err != nil {
			return nil, fmt.Errorf("recurrence.%s: %w", x.name, err)
		}
		*x.to = n
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// make evaluates n in scope sc, rewrites it and collects like terms.
func (s *Searcher) make(n *ast.Node, sc rewrite.Scope) (*value.Value, error) {
	v, err := rewrite.Eval(n, sc)
	if err != nil {
		return nil, err
	}
	if v, err = s.rw.Rewrite(v); err != nil {
		return nil, err
	}
	return terms.Collect(v), nil
}

// Run searches every configured branch, concurrently when the
// configuration asks for it. With StopOnZero the first branch to
// find a zero stops the others.
func (s *Searcher) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(s.cfg.Branches))
	stop := abool.New()
	if !s.cfg.Parallel {
		for i, b := range s.cfg.Branches {
			r, err := s.recurrence(ctx, b, stop)
			if err != nil {
				return results, err
			}
			results[i] = r
		}
		return results, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range s.cfg.Branches {
		i, b := i, b
		g.Go(func() error {
			r, err := s.recurrence(ctx, b, stop)
			results[i] = r
			return err
		})
	}
	return results, g.Wait()
}

// Recurrence searches the single branch b.
func (s *Searcher) Recurrence(ctx context.Context, b int) (Result, error) {
	return s.recurrence(ctx, b, abool.New())
}

func (s *Searcher) recurrence(ctx context.Context, b int, stop *abool.AtomicBool) (Result, error) {
	res := Result{Branch: b}
	log := s.log.With("mode", "recurrence", "branch", b)

	runID, err := s.begin("recurrence", b)
	if err != nil {
		return res, err
	}
	res.RunID = runID

	sc := rewrite.NewScope()
	sc.SetInt("b", b)
	nx, err := s.make(s.rec.x0, sc)
	if err != nil {
		return res, fmt.Errorf("branch %d x0: %w", b, err)
	}
	nxF, err := s.make(s.rec.f0, sc)
	if err != nil {
		return res, fmt.Errorf("branch %d f0: %w", b, err)
	}
	nxH, err := s.make(s.rec.h0, sc)
	if err != nil {
		return res, fmt.Errorf("branch %d h0: %w", b, err)
	}
	res.F = nxF

	for n := 1; n <= s.cfg.Steps; n++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if stop.IsSet() {
			log.Info("stopped", "step", res.Steps)
			break
		}
		k := n%3 + 1
		sc := rewrite.NewScope()
		sc.SetInt("b", b)
		sc.SetInt("n", k)
		sc.Set("nx", nx)
		sc.Set("nx_f", nxF)
		sc.Set("nx_h", nxH)

		fx := s.rec.fMiss
		if k == b {
			fx = s.rec.fHit
		}
		if nx, err = s.make(s.rec.next, sc); err != nil {
			return res, fmt.Errorf("branch %d step %d next: %w", b, n, err)
		}
		if nxF, err = s.make(fx, sc); err != nil {
			return res, fmt.Errorf("branch %d step %d f: %w", b, n, err)
		}
		if nxH, err = s.make(s.rec.h, sc); err != nil {
			return res, fmt.Errorf("branch %d step %d h: %w", b, n, err)
		}
		res.Steps, res.F = n, nxF

		f := terms.NewExp(nxF)
		log.Debug("step", "n", n, "e", k, "terms", f.Len(), "nx_f", nxF)
		if err := s.step(runID, n, f.Len(), nxF.String()); err != nil {
			return res, err
		}
		if nxF.IsZero() {
			res.Found, res.At = true, n
			log.Info("found zero", "step", n, "x", nx)
			if s.cfg.StopOnZero {
				stop.Set()
			}
			break
		}
	}
	if !res.Found {
		log.Info("no zero found", "steps", res.Steps)
	}
	return res, s.finish(runID, res)
}

func (s *Searcher) begin(mode string, b int) (string, error) {
	if s.db == nil {
		return "", nil
	}
	r, err := s.db.NewRun(mode, b, s.rw.Rules().Digest())
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return r.ID, nil
}

func (s *Searcher) step(id string, n, size int, expr string) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.AddStep(id, n, size, expr); err != nil {
		return fmt.Errorf("recording step %d: %w", n, err)
	}
	return nil
}

func (s *Searcher) finish(id string, r Result) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Finish(id, r.Steps, r.Found, r.At); err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}
