package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"zappem.net/pub/math/brak/store"
)

func TestRunClosesStoreOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	err := run([]string{"--store", path, "--log-level", "error", "runs", "show", "no-such-run"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("runs show of a missing run: err=%v", err)
	}
	if the.db != nil {
		t.Error("store left open after a failed command")
	}
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopening %s: %v", path, err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestRunRules(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	path := filepath.Join(t.TempDir(), "runs.db")
	if err := run([]string{"--store", path, "--log-level", "error", "rules"}); err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if the.db != nil {
		t.Error("store left open after rules")
	}
	got := out.String()
	for _, want := range []string{
		"[E(a), F(a)] = H(a)\n",
		"rules, blake3 " + the.rules.Digest() + "\n",
		"# C is 3x3: [[2, -1, -1], [-1, 2, -2], [-1, -1, 2]]\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rules output lacks %q:\n%s", want, got)
		}
	}
}
