package testutil

import (
	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// FakeCell is an in-memory checkbox cell.
type FakeCell struct {
	// Owner is the sequence of the row the cell was painted for.
	Owner   int64
	checked bool
}

// Checked implements grid.CellHandle.
func (c *FakeCell) Checked() bool { return c.checked }

// SetChecked implements grid.CellHandle.
func (c *FakeCell) SetChecked(checked bool) { c.checked = checked }

// FakeRow is the row handle PaintAll registers.
type FakeRow struct {
	Seq int64
}

// OwnerResolver resolves FakeCell owners. Use with grid.WithRowResolver.
func OwnerResolver(h grid.CellHandle) (int64, bool) {
	c, ok := h.(*FakeCell)
	if !ok {
		return 0, false
	}
	return c.Owner, true
}

// FakeRenderer records the repaint hooks it receives.
type FakeRenderer struct {
	Refreshes int
	Changed   []int64

	// Paint lists the fields PaintAll registers cells for on every Refresh.
	// Nil disables painting.
	Paint []string
}

// Refresh implements grid.Renderer.
func (r *FakeRenderer) Refresh(g *grid.Grid) {
	r.Refreshes++
	if r.Paint != nil {
		g.ResetCaches()
		PaintAll(g, r.Paint...)
	}
}

// RowStateChanged implements grid.Renderer.
func (r *FakeRenderer) RowStateChanged(_ *grid.Grid, row *grid.Row) {
	r.Changed = append(r.Changed, row.Seq)
}

// PaintAll registers a row handle for every row and a FakeCell for every
// given field, checked when the row's field holds the check sentinel.
func PaintAll(g *grid.Grid, fields ...string) {
	check := g.Options().Checkbox.Check
	for _, row := range g.Data() {
		g.SetRowHandle(row.Seq, &FakeRow{Seq: row.Seq})
		for _, field := range fields {
			cell := &FakeCell{Owner: row.Seq}
			cell.SetChecked(value.Equal(row.Get(field), check))
			g.SetCellHandle(row.Seq, field, cell)
		}
	}
}
