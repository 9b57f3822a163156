package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wgrid/internal/compiler"
	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/logging"
	"github.com/roach88/wgrid/internal/value"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	TableOptions
	Defs    string
	Options string
	Page    int
	Size    int
	Filter  []string
}

// LoadResult is one loaded page of a grid.
type LoadResult struct {
	Grid   string      `json:"grid"`
	Rows   []*grid.Row `json:"rows"`
	Paging grid.Paging `json:"paging"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{TableOptions: TableOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a page of rows into a grid and print it",
		Long: `Search a grid's table and load the result into a fresh grid instance.
Rows are printed with their row sequence and state.

Filters are name=value pairs. Values that parse as JSON (numbers, true,
false, quoted strings) are compared as such, anything else as a string.

Examples:
  wgrid load --db grid.db --grid items
  wgrid load --db grid.db --grid items --page 2 --size 20 --filter kind=x
  wgrid load --db grid.db --grid items --defs ./defs --options paging.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd)
		},
	}
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("grid")
	cmd.Flags().StringVar(&opts.Defs, "defs", "", "CUE definitions directory for the grid's fields and options")
	cmd.Flags().StringVar(&opts.Options, "options", "", "YAML or JSON(C) option file, replaces the definition's options")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number (with --size)")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "page size, 0 loads every row")
	cmd.Flags().StringArrayVar(&opts.Filter, "filter", nil, "equality filter name=value (repeatable)")
	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	filter, err := parseFilters(opts.Filter)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
	}
	cfg, err := definitionFor(opts.Defs, opts.Grid)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
	}
	if opts.Options != "" {
		if cfg.Options, err = compiler.LoadOptions(opts.Options); err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil)
		}
	}

	store, err := opts.openStore(ctx, opts.DB)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer store.Close()

	g := grid.New(cfg, grid.WithLogger(logging.Component("grid")))
	defer g.Dispose()
	if opts.Size > 0 {
		if err := g.ChangeOption(grid.OptIsPaging, true); err != nil {
			return out.Fail(ExitCommandError, ErrCodeGrid, err.Error(), nil)
		}
	}

	params := grid.Parameter{
		Values: filter,
		Paging: grid.Paging{PageNo: opts.Page, PageSize: opts.Size},
	}
	if err := g.Search(ctx, store.Table(opts.Grid, opts.Key), params); err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := LoadResult{Grid: opts.Grid, Rows: g.Data(), Paging: g.Paging()}
	return out.Success(result, func(w io.Writer) {
		for _, row := range result.Rows {
			data, err := value.MarshalCanonical(row.Fields)
			if err != nil {
				data = []byte(err.Error())
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", row.Seq, row.State, data)
		}
		if p := result.Paging; p.PageSize > 0 {
			fmt.Fprintf(w, "page %d/%d (%d row(s))\n", p.PageNo, p.LastPage(), p.TotalCount)
		} else {
			fmt.Fprintf(w, "%d row(s)\n", len(result.Rows))
		}
	})
}

// definitionFor returns the named grid from a definitions directory, or a
// bare config when dir is empty.
func definitionFor(dir, name string) (grid.Config, error) {
	if dir == "" {
		return grid.Config{Name: name}, nil
	}
	res, errs := compiler.LoadDefinitions(dir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return grid.Config{}, fmt.Errorf("definitions: %w", errors.Join(errs...))
	}
	cfg, ok := res.Grid(name)
	if !ok {
		return grid.Config{}, fmt.Errorf("definitions: grid %q not found in %s", name, dir)
	}
	return cfg, nil
}

func parseFilters(pairs []string) (value.Object, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(value.Object, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid filter %q: want name=value", p)
		}
		var v value.Value = value.String(raw)
		if json.Valid([]byte(raw)) {
			parsed, err := value.Unmarshal([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", p, err)
			}
			v = parsed
		}
		filter[name] = v
	}
	return filter, nil
}
