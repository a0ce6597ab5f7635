package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zappem.net/pub/math/brak/config"
	"zappem.net/pub/math/brak/rewrite"
	"zappem.net/pub/math/brak/rules"
	"zappem.net/pub/math/brak/store"
	"zappem.net/pub/math/brak/terms"
	"zappem.net/pub/math/brak/value"
)

func newSearcher(t *testing.T, c config.Config, opts ...Option) *Searcher {
	t.Helper()
	s, err := New(rewrite.New(rules.Default()), c, opts...)
	require.NoError(t, err)
	return s
}

func TestRecurrence(t *testing.T) {
	c := config.Default()
	c.Search.Steps = 1
	s := newSearcher(t, c)

	// [H(1), E(2)] = -E(2)
	r, err := s.Recurrence(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Steps)
	assert.False(t, r.Found)
	assert.True(t, value.Equal(r.F, value.Neg(value.E(2))), "got %v", r.F)

	// [E(1), F(2)] = 0, so only [E(1), H(2)] = E(1) remains.
	r, err = s.Recurrence(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, value.Equal(r.F, value.E(1)), "got %v", r.F)
}

func TestNewBadExpression(t *testing.T) {
	c := config.Default()
	c.Recurrence.Next = "[nx, E(n)"
	_, err := New(rewrite.New(rules.Default()), c)
	assert.Error(t, err)
}

func zeroConfig() config.Config {
	c := config.Default()
	c.Search.Steps = 5
	c.Recurrence.FHit = "0"
	c.Recurrence.FMiss = "0"
	return c
}

func TestRunStopOnZero(t *testing.T) {
	c := zeroConfig()
	c.Search.Branches = []int{1, 2}
	c.Search.Parallel = false
	c.Search.StopOnZero = true
	s := newSearcher(t, c)

	rs, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.True(t, rs[0].Found)
	assert.Equal(t, 1, rs[0].At)
	assert.False(t, rs[1].Found)
	assert.Equal(t, 0, rs[1].Steps)
}

func TestRunParallel(t *testing.T) {
	c := zeroConfig()
	s := newSearcher(t, c)

	rs, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rs, 3)
	for i, r := range rs {
		assert.Equal(t, i+1, r.Branch)
		assert.True(t, r.Found)
		assert.True(t, r.F.IsZero())
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newSearcher(t, config.Default())
	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecorder(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	s := newSearcher(t, zeroConfig(), WithRecorder(db))
	r, err := s.Recurrence(context.Background(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, r.RunID)

	run, err := db.Get(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, "recurrence", run.Mode)
	assert.Equal(t, 3, run.Branch)
	assert.Equal(t, rules.Default().Digest(), run.Rules)
	assert.True(t, run.Found)
	assert.Equal(t, 1, run.FoundAt)
	require.Len(t, run.Trace, 1)
	assert.Equal(t, "0", run.Trace[0].Expr)
}

func TestLinear(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	s := newSearcher(t, config.Default(), WithRecorder(db))
	r, err := s.Linear(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Steps)
	assert.False(t, r.Found)
	assert.Equal(t, "[E(3), E(2)]", r.F[0].String())
	assert.Equal(t, "-[E(3), E(1)]", r.F[1].String())
	assert.Equal(t, "-2 * [E(2), E(1)]", r.F[2].String())

	run, err := db.Get(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, "linear", run.Mode)
	require.Len(t, run.Trace, 1)
	assert.Equal(t, 3, run.Trace[0].Terms)
}

func TestLinearCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newSearcher(t, config.Default())
	r, err := s.Linear(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Steps)
}

func TestBranchNext(t *testing.T) {
	// With X = E(1): [E(1), F(1)] = H(1) and [E(1), H(1)] = -2 E(1).
	x := value.E(1)
	br := &branch{b: 1, f: terms.NewExp(value.H(1)), h: terms.NewExp(value.Neg(value.Mul(value.N(2), x)))}
	xk := terms.NewExp(x).Bracket(value.E(1))
	require.True(t, xk.IsZero())
	require.NoError(t, br.next(1, xk))
	assert.Equal(t, "-[E(1), H(1)] - 2 * E(1)", br.f.String())
	assert.True(t, br.h.IsZero(), "got %v", br.h)
}

// bracketF rewrites [x, F(b)] directly and collects it.
func bracketF(t *testing.T, rw *rewrite.Rewriter, x *value.Value, b int) *terms.Exp {
	t.Helper()
	v, err := rw.Rewrite(value.Brak(x, value.F(b)))
	require.NoError(t, err)
	return terms.NewExp(v)
}

func TestLoopsMatchRewriter(t *testing.T) {
	rw := rewrite.New(rules.Default())
	for steps := 1; steps <= 4; steps++ {
		c := config.Default()
		c.Search.Steps = steps
		s, err := New(rw, c)
		require.NoError(t, err)

		// The recurrence brackets E(1) with E(n mod 3 + 1) for n = 1...
		// A branch that reaches zero stops early, [[E(1), E(2)], F(3)]
		// being the first.
		for b := 1; b <= 3; b++ {
			r, err := s.Recurrence(context.Background(), b)
			require.NoError(t, err)
			x := value.E(1)
			for n := 1; n <= r.Steps; n++ {
				x = value.Brak(x, value.E(n%3+1))
			}
			want := bracketF(t, rw, x, b)
			got := terms.NewExp(r.F)
			assert.True(t, got.Sub(want).IsZero(), "recurrence steps=%d b=%d got=%v want=%v", r.Steps, b, got, want)
		}

		// The linear search brackets [E(1), E(2)] from n = 2.
		lr, err := s.Linear(context.Background(), steps)
		require.NoError(t, err)
		x := value.Brak(value.E(1), value.E(2))
		for n := 2; n <= lr.Steps; n++ {
			x = value.Brak(x, value.E(n%3+1))
		}
		for b := 1; b <= 3; b++ {
			want := bracketF(t, rw, x, b)
			got := lr.F[b-1]
			assert.True(t, got.Sub(want).IsZero(), "linear steps=%d b=%d got=%v want=%v", lr.Steps, b, got, want)
		}
	}
	// The direct rewrite does not collapse everything to zero.
	assert.False(t, bracketF(t, rw, value.Brak(value.E(1), value.E(2)), 1).IsZero())
}
