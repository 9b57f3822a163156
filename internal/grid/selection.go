package grid

import "github.com/roach88/wgrid/internal/value"

// CheckedCells returns the cached cells of field that report checked, in
// ascending row sequence order.
func (g *Grid) CheckedCells(field string) []CellHandle {
	var out []CellHandle
	for _, seq := range g.cachedSeqs(field) {
		if h := g.cells[seq][field]; h.Checked() {
			out = append(out, h)
		}
	}
	return out
}

// CheckedSeqs returns the sequences of the rows whose field cell is checked.
// The owning row comes from the RowResolver when one is installed, otherwise
// from the cache key.
func (g *Grid) CheckedSeqs(field string) ([]int64, error) {
	var out []int64
	for _, seq := range g.cachedSeqs(field) {
		h := g.cells[seq][field]
		if !h.Checked() {
			continue
		}
		owner := seq
		if g.resolver != nil {
			resolved, ok := g.resolver(h)
			if !ok {
				return nil, g.errorf(ErrCodeNotFound, seq, field, "cell has no owning row")
			}
			owner = resolved
		}
		out = append(out, owner)
	}
	return out, nil
}

// CheckedItems returns deep copies of the rows whose field cell is checked.
func (g *Grid) CheckedItems(field string) ([]*Row, error) {
	seqs, err := g.CheckedSeqs(field)
	if err != nil {
		return nil, err
	}
	out := make([]*Row, 0, len(seqs))
	for _, seq := range seqs {
		row, err := g.RowBySeq(seq)
		if err != nil {
			return nil, err
		}
		out = append(out, row.Clone())
	}
	return out, nil
}

// SetAllChecked flips every cached field cell to checked and writes the
// matching checkbox sentinel into the owning row. Rows without a cached cell
// are left alone. Row states are not changed.
func (g *Grid) SetAllChecked(field string, checked bool) error {
	if err := g.checkLive(0, "set all checked"); err != nil {
		return err
	}
	sentinel := g.options.Checkbox.Sentinel(checked)
	for _, seq := range g.cachedSeqs(field) {
		g.cells[seq][field].SetChecked(checked)
		if row, ok := g.lookup(seq); ok {
			row.Fields[field] = value.Clone(sentinel)
		}
	}
	g.logger.Debug().Str("field", field).Bool("checked", checked).Msg("all checked set")
	return nil
}
