package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// AssertionContext is what assertions can look at.
type AssertionContext struct {
	Ctx     context.Context
	Grid    *grid.Grid
	Backend Backend
}

// EvaluateAssertions runs every assertion and returns one message per
// failure. An empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	g := actx.Grid

	switch a.Type {
	case AssertRowCount:
		if got := g.Len(); got != a.Count {
			return fmt.Errorf("expected %d rows, got %d", a.Count, got)
		}
		return nil

	case AssertStates:
		return assertStates(g, a.States)

	case AssertCheckedSeqs:
		got, err := g.CheckedSeqs(a.Field)
		if err != nil {
			return err
		}
		if !slices.Equal(got, a.Seqs) {
			return fmt.Errorf("expected checked %v, got %v", a.Seqs, got)
		}
		return nil

	case AssertRow:
		row, err := g.RowBySeq(a.Seq)
		if err != nil {
			return err
		}
		expect, err := value.ObjectFromMap(a.Expect)
		if err != nil {
			return fmt.Errorf("expect: %w", err)
		}
		for _, k := range expect.SortedKeys() {
			if got := row.Get(k); !value.Equal(got, expect[k]) {
				return fmt.Errorf("field %q: expected %s, got %s", k, show(expect[k]), show(got))
			}
		}
		return nil

	case AssertModified:
		got, err := g.ModifiedFields(a.Seq)
		if err != nil {
			return err
		}
		want := append([]string{}, a.Fields...)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return fmt.Errorf("expected modified %v, got %v", want, got)
		}
		return nil

	case AssertApplied:
		if result.Applied != *a.Applied {
			return fmt.Errorf("expected %+v, got %+v", *a.Applied, result.Applied)
		}
		return nil

	case AssertSourceCount:
		n, err := actx.Backend.Count(actx.Ctx)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if n != a.Count {
			return fmt.Errorf("expected %d source rows, got %d", a.Count, n)
		}
		return nil

	case AssertOption:
		return assertOption(g.Options(), a.Option, a.Value)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertStates(g *grid.Grid, want map[grid.State][]int64) error {
	byState := map[grid.State][]*grid.Row{
		grid.StateSelect: g.SelectData(),
		grid.StateInsert: g.InsertData(),
		grid.StateUpdate: g.UpdateData(),
		grid.StateRemove: g.DeleteData(),
	}
	for _, st := range []grid.State{grid.StateSelect, grid.StateInsert, grid.StateUpdate, grid.StateRemove} {
		got := make([]int64, 0, len(byState[st]))
		for _, row := range byState[st] {
			got = append(got, row.Seq)
		}
		exp := want[st]
		if !slices.Equal(got, exp) {
			return fmt.Errorf("%s: expected %v, got %v", st, exp, got)
		}
	}
	return nil
}

// assertOption compares one option, addressed by its dotted JSON path.
func assertOption(opts grid.Options, path string, expected any) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	cur, err := value.Unmarshal(data)
	if err != nil {
		return err
	}
	for _, part := range strings.Split(strings.TrimPrefix(path, "option."), ".") {
		obj, ok := cur.(value.Object)
		if !ok {
			return fmt.Errorf("no option %q", path)
		}
		if cur, ok = obj[part]; !ok {
			return fmt.Errorf("no option %q", path)
		}
	}

	want, err := value.FromAny(expected)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if !value.Equal(cur, want) {
		return fmt.Errorf("option %s: expected %s, got %s", path, show(want), show(cur))
	}
	return nil
}

func show(v value.Value) string {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
