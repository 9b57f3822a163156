package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/wgrid/internal/compiler"
	"github.com/roach88/wgrid/internal/grid"
)

// GridSummary describes one valid grid definition.
type GridSummary struct {
	Name    string       `json:"name"`
	Fields  []string     `json:"fields"`
	Insert  bool         `json:"insert"`
	Options grid.Options `json:"options"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool          `json:"valid"`
	FileCount int           `json:"file_count"`
	Grids     []GridSummary `json:"grids"`
	Errors    []string      `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate CUE grid definitions",
		Long: `Compile and validate every grid under the top-level "grid" struct.

Exit codes:
  0 - All definitions valid
  1 - Validation errors
  2 - Command error (missing directory, CUE that does not build)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if _, err := os.Stat(dir); err != nil {
		return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("definitions directory not found: %s", dir), nil)
	}

	res, errs := compiler.LoadDefinitions(dir, compiler.LoadModeCollectAll)
	if res == nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, errs[0].Error(), nil)
	}

	result := ValidationResult{
		Valid:     len(errs) == 0,
		FileCount: res.FileCount,
		Grids:     make([]GridSummary, 0, len(res.Grids)),
	}
	for _, cfg := range res.Grids {
		result.Grids = append(result.Grids, summarize(cfg))
	}
	for _, err := range errs {
		result.Errors = append(result.Errors, err.Error())
	}

	if !result.Valid {
		return out.Fail(ExitFailure, ErrCodeValidation,
			fmt.Sprintf("%d validation error(s)", len(result.Errors)), result.Errors)
	}

	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %d grid(s) valid in %d file(s)\n", len(result.Grids), result.FileCount)
		for _, g := range result.Grids {
			fmt.Fprintf(w, "  %s: %d field(s)\n", g.Name, len(g.Fields))
		}
	})
}

func summarize(cfg grid.Config) GridSummary {
	s := GridSummary{
		Name:    cfg.Name,
		Fields:  make([]string, 0, len(cfg.Fields)),
		Insert:  cfg.Insert != nil,
		Options: grid.MergeOptions(cfg.Options),
	}
	for _, f := range cfg.Fields {
		s.Fields = append(s.Fields, f.Name)
	}
	return s
}
