package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/wgrid/internal/compiler"
	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/source/memory"
	"github.com/roach88/wgrid/internal/testutil"
	"github.com/roach88/wgrid/internal/value"
)

// Backend is where load steps read from and submit steps write to.
type Backend interface {
	grid.Source
	grid.Applier
	Count(ctx context.Context) (int, error)
}

type runConfig struct {
	backend Backend
	logger  zerolog.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithBackend runs the scenario against b instead of an in-memory table
// seeded from the scenario's source section.
func WithBackend(b Backend) RunOption {
	return func(c *runConfig) {
		c.backend = b
	}
}

// WithLogger passes l to the grid under test.
func WithLogger(l zerolog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Harness holds one scenario run.
type Harness struct {
	grid     *grid.Grid
	backend  Backend
	renderer *testutil.FakeRenderer
	ids      grid.IDGenerator
	result   *Result
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh grid and, unless WithBackend is given, a fresh
// in-memory table. Checkbox fields are painted with fake cells after every
// SetData, the way a view layer would.
//
// The returned error covers setup problems (definitions that do not compile,
// bad seed rows). Step and assertion failures are reported in the result.
func Run(ctx context.Context, sc *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	gridCfg, err := gridConfig(sc)
	if err != nil {
		return nil, err
	}

	if cfg.backend == nil {
		rows, err := objects(sc.Source.Rows)
		if err != nil {
			return nil, fmt.Errorf("source rows: %w", err)
		}
		cfg.backend = memory.New(sc.Source.Key, rows...)
	}

	var paint []string
	for _, f := range gridCfg.Fields {
		if f.Type == grid.FieldCheckbox {
			paint = append(paint, f.Name)
		}
	}
	renderer := &testutil.FakeRenderer{Paint: paint}

	h := &Harness{
		grid: grid.New(*gridCfg,
			grid.WithLogger(cfg.logger),
			grid.WithRenderer(renderer),
			grid.WithRowResolver(testutil.OwnerResolver),
		),
		backend:  cfg.backend,
		renderer: renderer,
		ids:      testutil.NewStaticIDGenerator(sc.ChangeSetID),
		result:   NewResult(),
	}

	for i, step := range sc.Steps {
		h.runStep(ctx, i, step)
	}

	actx := &AssertionContext{Ctx: ctx, Grid: h.grid, Backend: h.backend}
	for _, msg := range EvaluateAssertions(h.result, sc.Assertions, actx) {
		h.result.AddError("%s", msg)
	}
	return h.result, nil
}

// gridConfig builds the grid under test from definitions or inline fields.
func gridConfig(sc *Scenario) (*grid.Config, error) {
	if sc.Definitions != "" {
		res, errs := compiler.LoadDefinitions(sc.Definitions, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("definitions: %w", errors.Join(errs...))
		}
		cfg, ok := res.Grid(sc.Grid)
		if !ok {
			return nil, fmt.Errorf("definitions: grid %q not found", sc.Grid)
		}
		return &cfg, nil
	}

	cfg := &grid.Config{Name: sc.Name}
	for _, name := range sc.Fields {
		cfg.Fields = append(cfg.Fields, grid.Field{Name: name, Type: grid.FieldText})
	}
	if sc.Insert != nil {
		insert, err := value.ObjectFromMap(sc.Insert)
		if err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
		cfg.Insert = insert
	}
	if sc.Options != nil {
		cfg.Options = *sc.Options
	}
	return cfg, nil
}

func (h *Harness) runStep(ctx context.Context, i int, step Step) {
	ev := TraceEvent{Step: i, Op: step.Op, Seq: step.Seq}

	err := h.apply(ctx, step, &ev)

	var gerr *grid.Error
	switch {
	case err == nil && step.ExpectError != "":
		h.result.AddError("steps[%d] %s: expected error %s, got none", i, step.Op, step.ExpectError)
	case err != nil && errors.As(err, &gerr):
		ev.Error = gerr.Code
		if gerr.Code != step.ExpectError {
			h.result.AddError("steps[%d] %s: %v", i, step.Op, err)
		}
	case err != nil:
		h.result.AddError("steps[%d] %s: %v", i, step.Op, err)
	}

	ev.Rows = rowStates(h.grid)
	h.result.Trace = append(h.result.Trace, ev)
}

func (h *Harness) apply(ctx context.Context, step Step, ev *TraceEvent) error {
	g := h.grid

	switch step.Op {
	case OpLoad:
		filter, err := value.ObjectFromMap(step.Filter)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		params := grid.Parameter{
			Values: filter,
			Paging: grid.Paging{PageNo: step.Page, PageSize: step.Size},
		}
		return g.Search(ctx, h.backend, params)

	case OpSetData:
		rows, err := objects(step.Rows)
		if err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		return g.SetData(rows, g.Parameter())

	case OpInsert:
		var fields value.Object
		if step.Values != nil {
			var err error
			if fields, err = value.ObjectFromMap(step.Values); err != nil {
				return fmt.Errorf("values: %w", err)
			}
		}
		row, err := g.InsertRow(fields)
		if err != nil {
			return err
		}
		ev.Seq = row.Seq
		return nil

	case OpUpdate:
		v, err := value.FromAny(step.Value)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return g.UpdateField(step.Seq, step.Field, v)

	case OpRemove:
		return g.RemoveRow(step.Seq)

	case OpRestore:
		return g.RestoreRow(step.Seq)

	case OpMove:
		return g.MoveRow(step.From, step.To)

	case OpCheckAll:
		return g.SetAllChecked(step.Field, step.Checked)

	case OpPaint:
		if g.Disposed() {
			return grid.ErrDisposed
		}
		g.ResetCaches()
		testutil.PaintAll(g, h.renderer.Paint...)
		return nil

	case OpResetCaches:
		g.ResetCaches()
		return nil

	case OpChangeOption:
		return g.ChangeOption(step.Path, step.Value)

	case OpSubmit:
		cs, res, err := g.Submit(ctx, h.backend, h.ids)
		if err != nil {
			return err
		}
		ev.ChangeSet = cs.ID
		ev.Applied = &res
		h.result.Applied.Inserted += res.Inserted
		h.result.Applied.Updated += res.Updated
		h.result.Applied.Deleted += res.Deleted
		return nil

	case OpDispose:
		g.Dispose()
		return nil
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

func objects(rows []map[string]any) ([]value.Object, error) {
	out := make([]value.Object, len(rows))
	for i, r := range rows {
		obj, err := value.ObjectFromMap(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}
