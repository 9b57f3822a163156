package grid

import (
	"slices"

	"github.com/roach88/wgrid/internal/value"
)

// InsertRow appends a new INSERT row. Nil fields start from a copy of the
// insert template, or an empty row when none is configured.
func (g *Grid) InsertRow(fields value.Object) (*Row, error) {
	if err := g.checkLive(0, "insert row"); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = g.insert.Clone()
	}
	if fields == nil {
		fields = value.Object{}
	}

	row := &Row{Seq: g.NextSeq(), State: StateInsert, Fields: fields}
	g.rows = append(g.rows, row)
	g.markDirty()

	g.logger.Debug().Int64("seq", row.Seq).Msg("row inserted")
	return row, nil
}

// UpdateField writes one field. A SELECT row becomes UPDATE; INSERT and UPDATE
// rows keep their state. Writing an equal value is a no-op. REMOVE rows reject
// edits until RestoreRow.
func (g *Grid) UpdateField(seq int64, field string, v value.Value) error {
	if err := g.checkLive(seq, "update field"); err != nil {
		return err
	}
	row, err := g.RowBySeq(seq)
	if err != nil {
		return err
	}
	if row.State == StateRemove {
		return g.errorf(ErrCodeInvalidStateTransition, seq, field, "row is removed")
	}

	if cur, ok := row.Fields[field]; ok && value.Equal(cur, v) {
		return nil
	}
	row.Fields[field] = value.Clone(v)
	if row.State == StateSelect {
		row.State = StateUpdate
	}

	if g.options.IsRowStatusObserve && !g.options.RowStatusObserve.Excluded(field) {
		g.renderer.RowStateChanged(g, row)
	}
	return nil
}

// RemoveRow deletes a row. An INSERT row was never persisted, so it leaves the
// row set and its handles are evicted. SELECT and UPDATE rows move to REMOVE
// and are reported by DeleteData.
func (g *Grid) RemoveRow(seq int64) error {
	if err := g.checkLive(seq, "remove row"); err != nil {
		return err
	}
	row, err := g.RowBySeq(seq)
	if err != nil {
		return err
	}
	if !CanTransition(row.State, StateRemove) {
		return g.errorf(ErrCodeInvalidStateTransition, seq, "", "%s -> %s", row.State, StateRemove)
	}

	if row.State == StateInsert {
		g.rows = slices.DeleteFunc(g.rows, func(r *Row) bool { return r.Seq == seq })
		g.Reindex(seq)
		g.logger.Debug().Int64("seq", seq).Msg("inserted row dropped")
		return nil
	}

	row.State = StateRemove
	g.notifyState(row)
	return nil
}

// RestoreRow cancels a removal. The row returns to INSERT when it has no
// origin entry, to UPDATE when its fields differ from the origin, otherwise to
// SELECT.
func (g *Grid) RestoreRow(seq int64) error {
	if err := g.checkLive(seq, "restore row"); err != nil {
		return err
	}
	row, err := g.RowBySeq(seq)
	if err != nil {
		return err
	}
	if row.State != StateRemove {
		return g.errorf(ErrCodeInvalidStateTransition, seq, "", "%s is not removed", row.State)
	}

	next := StateInsert
	if _, ok := g.origin[seq]; ok {
		modified, err := g.IsModified(seq)
		if err != nil {
			return err
		}
		next = StateSelect
		if modified {
			next = StateUpdate
		}
	}
	row.State = next
	g.notifyState(row)
	return nil
}

// MoveRow moves the row at position from to position to. Sequences and
// states do not change.
func (g *Grid) MoveRow(from, to int) error {
	if err := g.checkLive(0, "move row"); err != nil {
		return err
	}
	row, err := g.Row(from)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(g.rows) {
		return g.errorf(ErrCodeNotFound, row.Seq, "", "no row at index %d", to)
	}
	if from == to {
		return nil
	}

	g.rows = slices.Delete(g.rows, from, from+1)
	g.rows = slices.Insert(g.rows, to, row)
	g.markDirty()
	return nil
}

// IsModified reports whether a loaded row differs from its origin entry.
// Rows without an origin entry are always modified.
func (g *Grid) IsModified(seq int64) (bool, error) {
	row, err := g.RowBySeq(seq)
	if err != nil {
		return false, err
	}
	origin, ok := g.origin[seq]
	if !ok {
		return true, nil
	}

	cur, err := value.RowFingerprint(row.Fields)
	if err != nil {
		return false, err
	}
	was, err := value.RowFingerprint(origin)
	if err != nil {
		return false, err
	}
	return cur != was, nil
}

// ModifiedFields returns the sorted names of the fields that differ from the
// origin entry, including fields added or dropped since the load.
func (g *Grid) ModifiedFields(seq int64) ([]string, error) {
	row, err := g.RowBySeq(seq)
	if err != nil {
		return nil, err
	}
	origin, ok := g.origin[seq]
	if !ok {
		return row.Fields.SortedKeys(), nil
	}

	var out []string
	for name, v := range row.Fields {
		if was, ok := origin[name]; !ok || !value.Equal(was, v) {
			out = append(out, name)
		}
	}
	for name := range origin {
		if _, ok := row.Fields[name]; !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (g *Grid) notifyState(row *Row) {
	if g.options.IsRowStatusObserve {
		g.renderer.RowStateChanged(g, row)
	}
}
