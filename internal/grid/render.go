package grid

// Renderer is the hook set a view layer implements to be told when to repaint.
// Both methods are called synchronously from the mutating call.
type Renderer interface {
	// Refresh is called after SetData replaced the row set.
	Refresh(g *Grid)

	// RowStateChanged is called after an observed field edit moved or kept a
	// row in a dirty state. Only fires when IsRowStatusObserve is on.
	RowStateChanged(g *Grid, row *Row)
}

// CellHandle is a rendered cell owned by the view layer. The grid only keeps a
// reference and toggles the checked flag of checkbox cells.
type CellHandle interface {
	Checked() bool
	SetChecked(checked bool)
}

// RowResolver maps a cell handle back to the sequence of the row that owns it.
// Views that re-parent cells supply one with WithRowResolver.
type RowResolver func(cell CellHandle) (seq int64, ok bool)

type nopRenderer struct{}

func (nopRenderer) Refresh(*Grid)               {}
func (nopRenderer) RowStateChanged(*Grid, *Row) {}
