// Program brak rewrites bracket expressions over the generators E(i),
// F(i) and H(i) and searches for bracket chains that vanish.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"zappem.net/pub/math/brak/config"
	"zappem.net/pub/math/brak/rewrite"
	"zappem.net/pub/math/brak/rules"
	"zappem.net/pub/math/brak/store"
)

// app is the state shared by every sub-command once the
// configuration is loaded.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	rules rules.Set
	rw    *rewrite.Rewriter
	db    *store.Store
}

var (
	cfgPath     string
	rulesPath   string
	storePath   string
	logLevel    string
	maxRewrites int

	the = &app{}

	rootCmd = &cobra.Command{
		Use:   "brak",
		Short: "Rewrite and search bracket expressions",
		Long: `brak reduces expressions in E(i), F(i) and H(i) with an ordered
rule set, and searches chains [[[E(1), E(2)], E(3)], ...] for one whose
bracket with F(b) is zero.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runRepl,
	}
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&rulesPath, "rules", "r", "", "rule file (default: built in rules)")
	f.StringVar(&storePath, "store", "", "SQLite file to record search runs in")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	f.IntVar(&maxRewrites, "max-rewrites", 0, "rule applications allowed per rewrite (0: unlimited)")

	rootCmd.AddCommand(replCmd, checkCmd, searchCmd, linearCmd, rulesCmd, runsCmd)
}

// setup loads the configuration, applies flag overrides and builds
// the rewriter.
func setup(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if cfgPath != "" {
		var err error
		if c, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("rules") {
		c.Rules = rulesPath
	}
	if flags.Changed("store") {
		c.Store = storePath
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("max-rewrites") {
		c.MaxRewrites = maxRewrites
	}
	if err := c.Validate(); err != nil {
		return err
	}
	the.cfg = c
	the.log = c.Logger()
	slog.SetDefault(the.log)

	if err := the.loadRules(c.Rules); err != nil {
		return err
	}
	if c.Store != "" {
		db, err := store.Open(c.Store)
		if err != nil {
			return err
		}
		the.db = db
	}
	return nil
}

// closeStore releases the run store, if one was opened.
func (a *app) closeStore() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// loadRules replaces the rule set, reading path or using the built in
// rules when path is empty.
func (a *app) loadRules(path string) error {
	rs := rules.Default()
	if path != "" {
		var err error
		if rs, err = rules.Load(path); err != nil {
			return err
		}
	}
	a.rules = rs
	a.rw = rewrite.New(rs,
		rewrite.WithLimit(a.cfg.MaxRewrites),
		rewrite.WithLogger(a.log))
	a.log.Debug("rules loaded", "path", path, "count", len(rs), "digest", rs.Digest())
	return nil
}

// run executes the command line args. The store is closed whether or
// not the command succeeds.
func run(args []string) (err error) {
	defer func() {
		if cerr := the.closeStore(); err == nil {
			err = cerr
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "brak:", err)
		os.Exit(1)
	}
}
