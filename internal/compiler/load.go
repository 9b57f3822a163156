package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/wgrid/internal/grid"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the grid definitions found in a directory.
type LoadResult struct {
	Grids     []grid.Config
	FileCount int
}

// Grid returns the definition with the given name.
func (r *LoadResult) Grid(name string) (grid.Config, bool) {
	for _, cfg := range r.Grids {
		if cfg.Name == name {
			return cfg, true
		}
	}
	return grid.Config{}, false
}

// LoadDefinitions loads every grid under the top-level "grid" struct of the
// CUE package in dir, in label order.
func LoadDefinitions(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("definitions directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scan %s: %w", dir, err)}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded")}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", inst.Err)}
	}

	root := ctx.BuildInstance(inst)
	if err := root.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	return compileAll(root, len(files), mode)
}

// CompileString compiles grid definitions from CUE source.
func CompileString(src string, mode LoadMode) (*LoadResult, []error) {
	root := cuecontext.New().CompileString(src)
	if err := root.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}
	return compileAll(root, 0, mode)
}

func compileAll(root cue.Value, fileCount int, mode LoadMode) (*LoadResult, []error) {
	result := &LoadResult{FileCount: fileCount}

	gridsVal := root.LookupPath(cue.ParsePath("grid"))
	if !gridsVal.Exists() {
		return result, []error{fmt.Errorf("no grid definitions found")}
	}
	iter, err := gridsVal.Fields()
	if err != nil {
		return result, []error{formatCUEError(err)}
	}

	var errs []error
	for iter.Next() {
		label := iter.Label()
		cfg, err := CompileGrid(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("grid.%s: %w", label, err))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		for _, verr := range Validate(cfg) {
			errs = append(errs, fmt.Errorf("grid.%s: %w", label, verr))
			if mode == LoadModeFailFast {
				return result, errs
			}
		}
		result.Grids = append(result.Grids, *cfg)
	}

	sort.SliceStable(result.Grids, func(i, j int) bool {
		return result.Grids[i].Name < result.Grids[j].Name
	})
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
