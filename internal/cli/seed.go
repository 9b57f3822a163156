package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/roach88/wgrid/internal/value"
)

// TableOptions are the flags shared by commands that touch a grid's rows.
type TableOptions struct {
	*RootOptions
	DB   string
	Grid string
	Key  string
}

func (o *TableOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.DB, "db", "", "database DSN (file path for sqlite3)")
	cmd.Flags().StringVar(&o.Grid, "grid", "", "grid name the rows belong to")
	cmd.Flags().StringVar(&o.Key, "key", "id", "row field holding the database key")
	_ = cmd.MarkFlagRequired("db")
}

// SeedResult reports the keys assigned to seeded rows.
type SeedResult struct {
	Grid string  `json:"grid"`
	IDs  []int64 `json:"ids"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <rows.json>",
		Short: "Insert rows into a grid's table",
		Long: `Insert a JSON array of row objects for a grid. Comments and trailing
commas are allowed. Key fields in the file are ignored; the database assigns
new keys.

Examples:
  wgrid seed --db grid.db --grid items rows.json
  wgrid seed --driver pgx --db postgres://localhost/wgrid --grid items rows.jsonc`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("grid")
	return cmd
}

func runSeed(opts *TableOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	rows, err := readRows(path)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
	}

	store, err := opts.openStore(cmd.Context(), opts.DB)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer store.Close()

	ids, err := store.Table(opts.Grid, opts.Key).Seed(cmd.Context(), rows)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := SeedResult{Grid: opts.Grid, IDs: ids}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ seeded %d row(s) into %s\n", len(ids), opts.Grid)
	})
}

// readRows reads a JSON or JSONC array of objects.
func readRows(path string) ([]value.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	v, err := value.Unmarshal(jsonc.ToJSON(data))
	if err != nil {
		return nil, fmt.Errorf("parse rows %s: %w", path, err)
	}
	arr, ok := v.(value.Array)
	if !ok {
		return nil, fmt.Errorf("parse rows %s: want an array of objects", path)
	}
	rows := make([]value.Object, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(value.Object)
		if !ok {
			return nil, fmt.Errorf("parse rows %s: element %d is not an object", path, i)
		}
		rows[i] = obj
	}
	return rows, nil
}
