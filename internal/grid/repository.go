package grid

import (
	"github.com/roach88/wgrid/internal/value"
)

// SetData replaces the row set. Every element gets a fresh sequence and the
// SELECT state; the maps in rows become the live row fields and must not be
// reused by the caller. The origin snapshot is rebuilt from deep copies and,
// when paging is on, params replaces the stored parameter.
func (g *Grid) SetData(rows []value.Object, params Parameter) error {
	if err := g.checkLive(0, "set data"); err != nil {
		return err
	}

	live := make([]*Row, len(rows))
	origin := make(map[int64]value.Object, len(rows))
	for i, fields := range rows {
		if fields == nil {
			fields = value.Object{}
		}
		row := &Row{Seq: g.NextSeq(), State: StateSelect, Fields: fields}
		live[i] = row
		origin[row.Seq] = fields.Clone()
	}

	g.rows = live
	g.origin = origin
	if g.options.IsPaging {
		g.param = params.Clone()
	}
	g.markDirty()

	g.logger.Debug().Int("rows", len(live)).Int64("lastSeq", g.clock.Current()).Msg("data set")
	g.renderer.Refresh(g)
	return nil
}

// AppendData pushes an already tagged row to the end of the row set. The
// row's sequence must come from NextSeq. The origin snapshot is not touched.
func (g *Grid) AppendData(row *Row) error {
	if row == nil {
		return g.errorf(ErrCodeInvalidRow, 0, "", "nil row")
	}
	if err := g.checkLive(row.Seq, "append data"); err != nil {
		return err
	}
	if row.Seq <= 0 {
		return g.errorf(ErrCodeInvalidRow, row.Seq, "", "sequence must be positive")
	}
	if row.Seq > g.clock.Current() {
		return g.errorf(ErrCodeInvalidRow, row.Seq, "", "sequence not issued by this grid")
	}
	if !row.State.Valid() {
		return g.errorf(ErrCodeInvalidRow, row.Seq, "", "unknown state %q", row.State)
	}
	if _, ok := g.lookup(row.Seq); ok {
		return g.errorf(ErrCodeInvalidRow, row.Seq, "", "sequence already present")
	}
	if row.Fields == nil {
		row.Fields = value.Object{}
	}

	g.rows = append(g.rows, row)
	g.markDirty()
	return nil
}

// Data returns the live row set. The slice is a copy; the rows are shared.
func (g *Grid) Data() []*Row {
	return append([]*Row(nil), g.rows...)
}

// Row returns the live row at position i.
func (g *Grid) Row(i int) (*Row, error) {
	if i < 0 || i >= len(g.rows) {
		return nil, g.errorf(ErrCodeNotFound, 0, "", "no row at index %d", i)
	}
	return g.rows[i], nil
}

// DeepData returns a deep copy of the row set.
func (g *Grid) DeepData() []*Row {
	out := make([]*Row, len(g.rows))
	for i, row := range g.rows {
		out[i] = row.Clone()
	}
	return out
}

// DeepRow returns a deep copy of the row at position i.
func (g *Grid) DeepRow(i int) (*Row, error) {
	row, err := g.Row(i)
	if err != nil {
		return nil, err
	}
	return row.Clone(), nil
}

// Len returns the number of rows, REMOVE rows included.
func (g *Grid) Len() int {
	return len(g.rows)
}

// RowBySeq returns the live row with the given sequence.
func (g *Grid) RowBySeq(seq int64) (*Row, error) {
	row, ok := g.lookup(seq)
	if !ok {
		return nil, g.errorf(ErrCodeNotFound, seq, "", "no row with sequence")
	}
	return row, nil
}

// OriginData returns the origin snapshot keyed by sequence. Read-only.
func (g *Grid) OriginData() map[int64]value.Object {
	return g.origin
}

// OriginRow returns the snapshot of one loaded row. Rows added after the last
// SetData have none.
func (g *Grid) OriginRow(seq int64) (value.Object, error) {
	fields, ok := g.origin[seq]
	if !ok {
		return nil, g.errorf(ErrCodeNotFound, seq, "", "no origin entry")
	}
	return fields, nil
}

// SelectData returns the rows in state SELECT.
func (g *Grid) SelectData() []*Row { return g.filter(StateSelect) }

// InsertData returns the rows in state INSERT.
func (g *Grid) InsertData() []*Row { return g.filter(StateInsert) }

// UpdateData returns the rows in state UPDATE.
func (g *Grid) UpdateData() []*Row { return g.filter(StateUpdate) }

// DeleteData returns the rows in state REMOVE.
func (g *Grid) DeleteData() []*Row { return g.filter(StateRemove) }

// ApplyData returns every row that is not SELECT, in row set order: the
// pending change set.
func (g *Grid) ApplyData() []*Row {
	var out []*Row
	for _, row := range g.rows {
		if row.State != StateSelect {
			out = append(out, row)
		}
	}
	return out
}

func (g *Grid) filter(state State) []*Row {
	var out []*Row
	for _, row := range g.rows {
		if row.State == state {
			out = append(out, row)
		}
	}
	return out
}

// BasicInsertData returns the configured insert template, or nil.
func (g *Grid) BasicInsertData() value.Object {
	return g.insert
}

// Parameter returns the last stored query parameter.
func (g *Grid) Parameter() Parameter {
	return g.param
}

// Paging returns the paging window of the last stored parameter.
func (g *Grid) Paging() Paging {
	return g.param.Paging
}

// Fields returns the column definitions.
func (g *Grid) Fields() []Field {
	return append([]Field(nil), g.fields...)
}

// lookup finds a row by sequence through the index, falling back to a scan
// when a raw index write left the entry stale.
func (g *Grid) lookup(seq int64) (*Row, bool) {
	g.ensureIndex()
	if i, ok := g.seqToIndex[seq]; ok && i >= 0 && i < len(g.rows) && g.rows[i].Seq == seq {
		return g.rows[i], true
	}
	for _, row := range g.rows {
		if row.Seq == seq {
			return row, true
		}
	}
	return nil, false
}
