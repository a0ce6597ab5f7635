// Package rules reads ordered rewrite rule sets. Each rule is a line
// of the form "pattern = replacement".
package rules

import (
	"bufio"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"zappem.net/pub/math/brak/ast"
)

var (
	// ErrInvalidRuleLine is returned (wrapped) for a line that is not
	// "pattern = replacement".
	ErrInvalidRuleLine = errors.New("invalid rule line")
	// ErrTablePattern is returned (wrapped) when a C(row, col) lookup
	// appears on the pattern side of a rule.
	ErrTablePattern = ast.ErrTablePattern
)

// Rule rewrites values matching Pattern into Replacement.
type Rule struct {
	Pattern     *ast.Node
	Replacement *ast.Node
}

// String displays the rule as it would appear in a rule file.
func (r Rule) String() string {
	return fmt.Sprintf("%v = %v", r.Pattern, r.Replacement)
}

// Set is an ordered list of rules. Earlier rules take priority.
type Set []Rule

// ParseRule converts a single "pattern = replacement" line into a
// Rule.
func ParseRule(line string) (Rule, error) {
	parts := strings.Split(line, "=")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q: want exactly one '='", ErrInvalidRuleLine, line)
	}
	p, err := ast.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return Rule{}, fmt.Errorf("%w: pattern: %w", ErrInvalidRuleLine, err)
	}
	if p.HasTable() {
		return Rule{}, fmt.Errorf("%w: left side of %q", ErrTablePattern, line)
	}
	e, err := ast.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return Rule{}, fmt.Errorf("%w: replacement: %w", ErrInvalidRuleLine, err)
	}
	return Rule{Pattern: p, Replacement: e}, nil
}

// Read parses a rule file. Blank lines and lines starting with '#'
// are ignored.
func Read(r io.Reader) (Set, error) {
	var rs Set
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := ParseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		rs = append(rs, rule)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Load reads the rule file at path.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open rule file: %w", err)
	}
	defer f.Close()
	rs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// MustParse builds a Set from rule lines and panics on error. It is
// meant for fixed rule sets written in code.
func MustParse(lines ...string) Set {
	rs, err := Read(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		panic(err)
	}
	return rs
}

//go:embed lie.rules
var defaultRules string

// Default returns the built in rule set: the relations between the
// E, F and H generators, bilinearity of the bracket, the Jacobi
// identity along chains of E brackets, and sign and scalar
// simplification.
func Default() Set {
	rs, err := Read(strings.NewReader(defaultRules))
	if err != nil {
		panic(err)
	}
	return rs
}

// Digest returns a hex encoded BLAKE3 fingerprint of the rule set in
// its displayed form.
func (rs Set) Digest() string {
	h := blake3.New()
	for _, r := range rs {
		io.WriteString(h, r.String())
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// String lists the rules, one per line.
func (rs Set) String() string {
	var s []string
	for _, r := range rs {
		s = append(s, r.String())
	}
	return strings.Join(s, "\n")
}
