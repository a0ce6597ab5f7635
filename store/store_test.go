package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "brak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTemp(t)

	r, err := s.NewRun("recurrence", 2, "abc")
	require.NoError(t, err)
	assert.Len(t, r.ID, 36)

	require.NoError(t, s.AddStep(r.ID, 2, 1, "E(1)"))
	require.NoError(t, s.AddStep(r.ID, 1, 1, "-[E(2), E(1)]"))
	require.NoError(t, s.Finish(r.ID, 2, true, 2))

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "recurrence", got.Mode)
	assert.Equal(t, 2, got.Branch)
	assert.Equal(t, "abc", got.Rules)
	assert.True(t, got.Found)
	assert.Equal(t, 2, got.FoundAt)
	require.Len(t, got.Trace, 2)
	assert.Equal(t, 1, got.Trace[0].N)
	assert.Equal(t, "-[E(2), E(1)]", got.Trace[0].Expr)
	assert.Equal(t, "E(1)", got.Trace[1].Expr)
}

func TestRuns(t *testing.T) {
	s := openTemp(t)

	a, err := s.NewRun("linear", 1, "d")
	require.NoError(t, err)
	b, err := s.NewRun("linear", 2, "d")
	require.NoError(t, err)

	rs, err := s.Runs()
	require.NoError(t, err)
	assert.Len(t, rs, 2)

	require.NoError(t, s.Delete(a.ID))
	rs, err = s.Runs()
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, b.ID, rs[0].ID)

	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotFound(t *testing.T) {
	s := openTemp(t)

	assert.ErrorIs(t, s.Finish("missing", 1, false, 0), ErrNotFound)
	assert.ErrorIs(t, s.Delete("missing"), ErrNotFound)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
