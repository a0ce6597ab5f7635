// Package config holds the settings of a brak run: which rules to
// load, how far to search and where to keep results.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top level configuration, loaded from YAML.
type Config struct {
	// Rules is the rule file path. Empty selects the built in rules.
	Rules string `yaml:"rules"`

	// MaxRewrites caps rule applications per rewrite. Zero means no
	// cap.
	MaxRewrites int `yaml:"max_rewrites"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Store is the SQLite database for results. Empty disables
	// persistence.
	Store string `yaml:"store"`

	Search SearchConfig `yaml:"search"`

	Recurrence RecurrenceConfig `yaml:"recurrence"`
}

// SearchConfig bounds the search loops.
type SearchConfig struct {
	// Steps is the number of recurrence steps per branch.
	Steps int `yaml:"steps"`

	// Branches lists the F/H generator indices b to explore.
	Branches []int `yaml:"branches"`

	// Parallel runs the branches concurrently.
	Parallel bool `yaml:"parallel"`

	// StopOnZero stops every branch once one reaches zero.
	StopOnZero bool `yaml:"stop_on_zero"`

	// ReportEvery logs progress of the linear search every so many
	// steps.
	ReportEvery int `yaml:"report_every"`
}

// RecurrenceConfig holds the expressions of the recurrence search.
// Each is evaluated with b, n, nx, nx_f and nx_h bound.
type RecurrenceConfig struct {
	X0    string `yaml:"x0"`
	F0    string `yaml:"f0"`
	H0    string `yaml:"h0"`
	Next  string `yaml:"next"`
	FHit  string `yaml:"f_hit"`
	FMiss string `yaml:"f_miss"`
	H     string `yaml:"h"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MaxRewrites: 1000000,
		LogLevel:    "info",
		Search: SearchConfig{
			Steps:       12,
			Branches:    []int{1, 2, 3},
			Parallel:    true,
			StopOnZero:  false,
			ReportEvery: 500,
		},
		Recurrence: DefaultRecurrence(),
	}
}

// DefaultRecurrence builds X(n+1) = [X(n), E(n)] and tracks
// [X(n), F(b)] and [X(n), H(b)] alongside it.
func DefaultRecurrence() RecurrenceConfig {
	return RecurrenceConfig{
		X0:    "E(1)",
		F0:    "[E(1), F(b)]",
		H0:    "[E(1), H(b)]",
		Next:  "[nx, E(n)]",
		FHit:  "[nx_f, E(n)] + nx_h",
		FMiss: "[nx_f, E(n)]",
		H:     "[nx_h, E(n)] - C(b, n) * [nx, E(n)]",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.MaxRewrites < 0 {
		return fmt.Errorf("%w: max_rewrites must not be negative", ErrInvalid)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Search.Steps < 0 {
		return fmt.Errorf("%w: search.steps must not be negative", ErrInvalid)
	}
	if len(c.Search.Branches) == 0 {
		return fmt.Errorf("%w: search.branches is empty", ErrInvalid)
	}
	for _, b := range c.Search.Branches {
		if b < 1 || b > 3 {
			return fmt.Errorf("%w: branch %d outside 1..3", ErrInvalid, b)
		}
	}
	r := c.Recurrence
	for name, s := range map[string]string{
		"x0": r.X0, "f0": r.F0, "h0": r.H0, "next": r.Next,
		"f_hit": r.FHit, "f_miss": r.FMiss, "h": r.H,
	} {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: recurrence.%s is empty", ErrInvalid, name)
		}
	}
	return nil
}

// ParseLevel converts a log_level string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("%w: log_level %q", ErrInvalid, s)
	}
	return l, nil
}

// Logger returns a text logger writing to stderr at the configured
// level.
func (c Config) Logger() *slog.Logger {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
