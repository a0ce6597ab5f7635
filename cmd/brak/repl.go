package main

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"zappem.net/pub/io/lined"

	"zappem.net/pub/math/brak/rewrite"
	"zappem.net/pub/math/brak/terms"
	"zappem.net/pub/math/brak/value"
)

var (
	symbol = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

	zeroColor    = color.New(color.FgGreen, color.Bold)
	nonZeroColor = color.New(color.FgYellow)

	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Long: `Each line is an expression to reduce, or one of:
  name := expr   assign the reduced expr to name (empty expr unassigns)
  list           show assigned names
  rules          show the rule set
  load <file>    replace the rule set
  exit           leave
Lines starting with # are ignored.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
)

func runRepl(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "brak: %d rules\n\n", len(the.rules))
	s := newSession(the, out)
	t := lined.NewReader()
	for {
		fmt.Fprint(out, "> ")
		line, err := t.ReadString()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to recover: %w", err)
		}
		if s.exec(line) {
			return nil
		}
	}
}

// session holds the assigned names of an interactive session.
type session struct {
	app  *app
	vars map[string]*value.Value
	out  io.Writer
}

func newSession(a *app, out io.Writer) *session {
	return &session{
		app:  a,
		vars: make(map[string]*value.Value),
		out:  out,
	}
}

// reduce evaluates text with the assigned names in scope, rewrites it
// and collects like terms.
func (s *session) reduce(text string) (*value.Value, error) {
	sc := rewrite.NewScope()
	for k, v := range s.vars {
		sc.Set(k, v)
	}
	v, err := s.app.rw.RewriteString(text, sc)
	if err != nil {
		return nil, err
	}
	return terms.Collect(v), nil
}

// exec runs one line of input and reports whether the session is
// over.
func (s *session) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "exit":
		if len(fields) == 1 {
			fmt.Fprintln(s.out, "exiting")
			return true
		}
	case "list":
		if len(fields) == 1 {
			var ks []string
			for k := range s.vars {
				ks = append(ks, k)
			}
			sort.Strings(ks)
			for _, k := range ks {
				fmt.Fprintf(s.out, " %s := %v\n", k, s.vars[k])
			}
			return false
		}
	case "rules":
		if len(fields) == 1 {
			fmt.Fprintln(s.out, s.app.rules)
			return false
		}
	case "load":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: load <file>")
			return false
		}
		if err := s.app.loadRules(fields[1]); err != nil {
			fmt.Fprintf(s.out, "load failed: %v\n", err)
			return false
		}
		fmt.Fprintf(s.out, " %d rules\n", len(s.app.rules))
		return false
	}

	if name, text, ok := strings.Cut(line, ":="); ok {
		name = strings.TrimSpace(name)
		if !symbol.MatchString(name) {
			fmt.Fprintf(s.out, "invalid assignment to %q\n", name)
			return false
		}
		if strings.TrimSpace(text) == "" {
			delete(s.vars, name)
			return false
		}
		v, err := s.reduce(text)
		if err != nil {
			fmt.Fprintf(s.out, "assignment to %q failed: %v\n", name, err)
			return false
		}
		s.vars[name] = v
		return false
	}

	v, err := s.reduce(line)
	if err != nil {
		fmt.Fprintf(s.out, "%v\n", err)
		return false
	}
	report(s.out, v)
	return false
}

// report prints v and whether it is zero.
func report(w io.Writer, v *value.Value) {
	fmt.Fprintf(w, " %v\n", v)
	if v.IsZero() {
		zeroColor.Fprintln(w, "Is zero!")
	} else {
		nonZeroColor.Fprintln(w, "Not zero")
	}
}
