package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zappem.net/pub/math/brak/matrix"
	"zappem.net/pub/math/brak/search"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check <expr>",
		Short: "Reduce an expression and report whether it is zero",
		Example: `  brak check '[[[[[[E(1), E(2)], E(3)], E(1)], E(2)], E(3)], F(1)]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	steps      int
	branches   []int
	parallel   bool
	stopOnZero bool

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Run the rewriting recurrence search for each branch",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}

	linearSteps int

	linearCmd = &cobra.Command{
		Use:   "linear",
		Short: "Run the term list search over all three branches at once",
		Long: `linear brackets X = [E(1), E(2)] with E(n mod 3 + 1) for
n = 2, 3, ... and tracks [X, F(b)] for b = 1, 2, 3 without the rewriter.
It stops when all three vanish together, after --steps steps, or on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: runLinear,
	}

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "Print the loaded rule set, its digest and the C(row, col) table",
		Args:  cobra.NoArgs,
		RunE:  runRules,
	}

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List recorded search runs",
		Args:  cobra.NoArgs,
		RunE:  runRuns,
	}
	runsShowCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Print the steps of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
	runsRmCmd = &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove recorded runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRunsRm,
	}
)

func init() {
	f := searchCmd.Flags()
	f.IntVarP(&steps, "steps", "n", 0, "steps per branch (default from config)")
	f.IntSliceVarP(&branches, "branch", "b", nil, "branches to search (default from config)")
	f.BoolVar(&parallel, "parallel", false, "search branches concurrently")
	f.BoolVar(&stopOnZero, "stop-on-zero", false, "stop all branches at the first zero")

	linearCmd.Flags().IntVarP(&linearSteps, "steps", "n", 0, "steps to run, 0 runs until interrupted")

	runsCmd.AddCommand(runsShowCmd, runsRmCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := newSession(the, cmd.OutOrStdout())
	v, err := s.reduce(strings.Join(args, " "))
	if err != nil {
		return err
	}
	report(cmd.OutOrStdout(), v)
	return nil
}

// interruptible returns a context canceled on interrupt.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func newSearcher() (*search.Searcher, error) {
	opts := []search.Option{search.WithLogger(the.log)}
	if the.db != nil {
		opts = append(opts, search.WithRecorder(the.db))
	}
	return search.New(the.rw, the.cfg, opts...)
}

func runSearch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	c := &the.cfg.Search
	if flags.Changed("steps") {
		c.Steps = steps
	}
	if flags.Changed("branch") {
		c.Branches = branches
	}
	if flags.Changed("parallel") {
		c.Parallel = parallel
	}
	if flags.Changed("stop-on-zero") {
		c.StopOnZero = stopOnZero
	}
	if err := the.cfg.Validate(); err != nil {
		return err
	}
	s, err := newSearcher()
	if err != nil {
		return err
	}
	ctx, stop := interruptible(cmd)
	defer stop()
	rs, err := s.Run(ctx)
	out := cmd.OutOrStdout()
	for _, r := range rs {
		if r.Found {
			zeroColor.Fprintf(out, "b=%d: zero after %d steps\n", r.Branch, r.At)
		} else {
			nonZeroColor.Fprintf(out, "b=%d: no zero in %d steps\n", r.Branch, r.Steps)
		}
		if r.RunID != "" {
			fmt.Fprintf(out, "  run %s\n", r.RunID)
		}
	}
	return err
}

func runLinear(cmd *cobra.Command, args []string) error {
	s, err := newSearcher()
	if err != nil {
		return err
	}
	ctx, stop := interruptible(cmd)
	defer stop()
	r, err := s.Linear(ctx, linearSteps)
	out := cmd.OutOrStdout()
	if r.Found {
		zeroColor.Fprintf(out, "Found zero @ %d\n", r.Steps)
	} else {
		nonZeroColor.Fprintf(out, "no zero up to step %d\n", r.Steps)
	}
	if r.RunID != "" {
		fmt.Fprintf(out, "  run %s\n", r.RunID)
	}
	return err
}

func runRules(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, the.rules)
	fmt.Fprintf(out, "# %d rules, blake3 %s\n", len(the.rules), the.rules.Digest())
	c := matrix.Constants()
	rows, cols := c.Dims()
	fmt.Fprintf(out, "# C is %dx%d: %v\n", rows, cols, c)
	return nil
}

var errNoStore = errors.New("no store configured, use --store or store: in the config")

func needStore() error {
	if the.db == nil {
		return errNoStore
	}
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	if err := needStore(); err != nil {
		return err
	}
	rs, err := the.db.Runs()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tBRANCH\tSTEPS\tFOUND\tSTARTED")
	for _, r := range rs {
		found := "-"
		if r.Found {
			found = fmt.Sprint(r.FoundAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", r.ID, r.Mode, r.Branch, r.Steps, found,
			r.StartTime.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if err := needStore(); err != nil {
		return err
	}
	r, err := the.db.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s b=%d rules=%s\n", r.ID, r.Mode, r.Branch, r.Rules)
	for _, s := range r.Trace {
		fmt.Fprintf(out, "%4d %4d  %s\n", s.N, s.Terms, s.Expr)
	}
	return nil
}

func runRunsRm(cmd *cobra.Command, args []string) error {
	if err := needStore(); err != nil {
		return err
	}
	for _, id := range args {
		if err := the.db.Delete(id); err != nil {
			return err
		}
	}
	return nil
}
