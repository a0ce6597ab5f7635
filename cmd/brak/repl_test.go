package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"zappem.net/pub/math/brak/config"
	"zappem.net/pub/math/brak/rewrite"
	"zappem.net/pub/math/brak/rules"
)

func testApp() *app {
	rs := rules.Default()
	return &app{
		cfg:   config.Default(),
		log:   slog.Default(),
		rules: rs,
		rw:    rewrite.New(rs),
	}
}

func TestSession(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	s := newSession(testApp(), &out)

	vs := []struct {
		line string
		want string
	}{
		{line: "# a comment", want: ""},
		{line: "", want: ""},
		{line: "x := [E(1), E(2)]", want: ""},
		{line: "list", want: " x := -[E(2), E(1)]\n"},
		{line: "[x, F(1)]", want: " -E(2)\nNot zero\n"},
		{line: "[E(1), E(1)]", want: " 0\nIs zero!\n"},
		{line: "1 + 2 * 3", want: " 7\nNot zero\n"},
		{line: "x :=", want: ""},
		{line: "list", want: ""},
		{line: "1x := 3", want: "invalid assignment to \"1x\"\n"},
		{line: "load", want: "usage: load <file>\n"},
	}
	for i, x := range vs {
		out.Reset()
		if s.exec(x.line) {
			t.Fatalf("[%d] %q ended the session", i, x.line)
		}
		if got := out.String(); got != x.want {
			t.Errorf("[%d] %q got=%q want=%q", i, x.line, got, x.want)
		}
	}

	out.Reset()
	s.exec("[y, E(1)]")
	if !strings.Contains(out.String(), rewrite.ErrUnboundVariable.Error()) {
		t.Errorf("unbound name reported as %q", out.String())
	}

	out.Reset()
	if !s.exec("exit") || out.String() != "exiting\n" {
		t.Errorf("exit got=%q", out.String())
	}
}

func TestSessionLoad(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	a := testApp()
	s := newSession(a, &out)

	path := filepath.Join(t.TempDir(), "seven.rules")
	if err := os.WriteFile(path, []byte("# one rule\n[E(a), E(a)] = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.exec("load " + path)
	if got, want := out.String(), " 1 rules\n"; got != want {
		t.Fatalf("load got=%q want=%q", got, want)
	}

	out.Reset()
	s.exec("[E(1), E(1)]")
	if got, want := out.String(), " 7\nNot zero\n"; got != want {
		t.Errorf("got=%q want=%q", got, want)
	}

	out.Reset()
	s.exec("load " + filepath.Join(t.TempDir(), "missing.rules"))
	if !strings.HasPrefix(out.String(), "load failed:") {
		t.Errorf("missing file got=%q", out.String())
	}
	if len(a.rules) != 1 {
		t.Errorf("failed load replaced the rules: %d", len(a.rules))
	}
}
