package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/harness"
	"github.com/roach88/wgrid/internal/logging"
)

// ApplyResult reports a scenario run against a database.
type ApplyResult struct {
	Scenario string               `json:"scenario"`
	Grid     string               `json:"grid"`
	Pass     bool                 `json:"pass"`
	Applied  grid.ApplyResult     `json:"applied"`
	Trace    []harness.TraceEvent `json:"trace"`
	Errors   []string             `json:"errors,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <scenario.yaml>",
		Short: "Run an edit scenario against a database",
		Long: `Run a scenario's steps against a grid's table in the database. Load steps
read from the table and submit steps write to it; the scenario's source rows
are ignored (use seed first).

The table is --grid, or the scenario's grid, or the scenario's name.

Exit codes:
  0 - Every step and assertion held
  1 - The scenario failed
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runApply(opts *TableOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	sc, err := harness.LoadScenario(path)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
	}

	table := opts.Grid
	if table == "" {
		table = sc.Grid
	}
	if table == "" {
		table = sc.Name
	}

	store, err := opts.openStore(ctx, opts.DB)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer store.Close()

	res, err := harness.Run(ctx, sc,
		harness.WithBackend(store.Table(table, opts.Key)),
		harness.WithLogger(logging.Component("grid")),
	)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
	}

	result := ApplyResult{
		Scenario: sc.Name,
		Grid:     table,
		Pass:     res.Pass,
		Applied:  res.Applied,
		Trace:    res.Trace,
		Errors:   res.Errors,
	}
	if !result.Pass {
		return out.Fail(ExitFailure, ErrCodeScenario, fmt.Sprintf("scenario %s failed", sc.Name), result.Errors)
	}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s: %d step(s) on %s\n", sc.Name, len(result.Trace), table)
		fmt.Fprintf(w, "  inserted %d, updated %d, deleted %d\n",
			result.Applied.Inserted, result.Applied.Updated, result.Applied.Deleted)
	})
}
