package grid

import (
	"maps"
	"slices"
)

// NextSeq advances the row clock and returns the new sequence. It is the only
// source of row sequences; the first call on a grid returns 1.
func (g *Grid) NextSeq() int64 {
	return g.clock.Next()
}

// CurrentSeq returns the last sequence handed out, 0 if none.
func (g *Grid) CurrentSeq() int64 {
	return g.clock.Current()
}

// ResetCaches clears both index maps and both handle caches ahead of a full
// repaint. Rows and the row clock are left alone. No-op after Dispose.
func (g *Grid) ResetCaches() {
	if g.disposed {
		return
	}
	g.clearCaches()
	g.markDirty()
	g.logger.Debug().Msg("caches reset")
}

func (g *Grid) clearCaches() {
	clear(g.seqToIndex)
	clear(g.indexToSeq)
	clear(g.rowHandles)
	clear(g.cells)
}

func (g *Grid) markDirty() {
	g.dirty = true
}

// ensureIndex rebuilds the index maps if the row set changed since the last
// rebuild. Every positional read goes through here.
func (g *Grid) ensureIndex() {
	if g.dirty {
		g.rebuild()
	}
}

func (g *Grid) rebuild() {
	clear(g.seqToIndex)
	clear(g.indexToSeq)
	for i, row := range g.rows {
		g.seqToIndex[row.Seq] = i
		g.indexToSeq[i] = row.Seq
	}
	g.dirty = false
	g.logger.Debug().Int("rows", len(g.rows)).Msg("index rebuilt")
}

// Reindex rebuilds the index maps from the row set now and drops the handle
// caches of the given sequences, typically rows that just left the row set.
// No-op after Dispose.
func (g *Grid) Reindex(evict ...int64) {
	if g.disposed {
		return
	}
	g.rebuild()
	for _, seq := range evict {
		g.evict(seq)
	}
}

func (g *Grid) evict(seq int64) {
	delete(g.rowHandles, seq)
	delete(g.cells, seq)
	g.logger.Debug().Int64("seq", seq).Msg("handles evicted")
}

// SeqIndex returns the position of the row with the given sequence.
func (g *Grid) SeqIndex(seq int64) (int, error) {
	g.ensureIndex()
	i, ok := g.seqToIndex[seq]
	if !ok {
		return -1, g.errorf(ErrCodeNotFound, seq, "", "sequence not indexed")
	}
	return i, nil
}

// IndexSeq returns the sequence of the row at position i.
func (g *Grid) IndexSeq(i int) (int64, error) {
	g.ensureIndex()
	seq, ok := g.indexToSeq[i]
	if !ok {
		return 0, g.errorf(ErrCodeNotFound, 0, "", "no sequence at index %d", i)
	}
	return seq, nil
}

// SetSeqIndex writes one seq->index entry. The reverse map is not updated;
// use Verify to check consistency after raw writes.
func (g *Grid) SetSeqIndex(seq int64, i int) {
	g.seqToIndex[seq] = i
}

// SetIndexSeq writes one index->seq entry. The reverse map is not updated.
func (g *Grid) SetIndexSeq(i int, seq int64) {
	g.indexToSeq[i] = seq
}

// Verify checks that both index maps describe the row set exactly.
func (g *Grid) Verify() error {
	g.ensureIndex()
	if len(g.seqToIndex) != len(g.rows) || len(g.indexToSeq) != len(g.rows) {
		return g.errorf(ErrCodeInvariantViolation, 0, "",
			"index sizes %d/%d, rows %d", len(g.seqToIndex), len(g.indexToSeq), len(g.rows))
	}
	for i, row := range g.rows {
		if got, ok := g.indexToSeq[i]; !ok || got != row.Seq {
			return g.errorf(ErrCodeInvariantViolation, row.Seq, "", "index %d maps to sequence %d", i, got)
		}
		if got, ok := g.seqToIndex[row.Seq]; !ok || got != i {
			return g.errorf(ErrCodeInvariantViolation, row.Seq, "", "sequence maps to index %d, want %d", got, i)
		}
	}
	return nil
}

// SetRowHandle caches the rendered row for a sequence. Nil handles and calls
// after Dispose are ignored.
func (g *Grid) SetRowHandle(seq int64, h any) {
	if h == nil || g.disposed {
		return
	}
	g.rowHandles[seq] = h
}

// RowHandle returns the cached rendered row for a sequence.
func (g *Grid) RowHandle(seq int64) (any, error) {
	h, ok := g.rowHandles[seq]
	if !ok {
		return nil, g.errorf(ErrCodeNotFound, seq, "", "row handle not cached")
	}
	return h, nil
}

// SetCellHandle caches the rendered cell for a sequence and field. Nil
// handles and calls after Dispose are ignored.
func (g *Grid) SetCellHandle(seq int64, field string, h CellHandle) {
	if h == nil || g.disposed {
		return
	}
	byField, ok := g.cells[seq]
	if !ok {
		byField = make(map[string]CellHandle)
		g.cells[seq] = byField
	}
	byField[field] = h
}

// CellHandle returns the cached rendered cell for a sequence and field.
func (g *Grid) CellHandle(seq int64, field string) (CellHandle, error) {
	h, ok := g.cells[seq][field]
	if !ok {
		return nil, g.errorf(ErrCodeNotFound, seq, field, "cell handle not cached")
	}
	return h, nil
}

// FirstRowSeq returns the sequence of the row at position 0.
func (g *Grid) FirstRowSeq() (int64, error) {
	return g.IndexSeq(0)
}

// FirstRowHandle returns the cached rendered row at position 0.
func (g *Grid) FirstRowHandle() (any, error) {
	seq, err := g.FirstRowSeq()
	if err != nil {
		return nil, err
	}
	return g.RowHandle(seq)
}

// cachedSeqs returns the sequences holding a cell handle for field, ascending.
func (g *Grid) cachedSeqs(field string) []int64 {
	var seqs []int64
	for _, seq := range slices.Sorted(maps.Keys(g.cells)) {
		if _, ok := g.cells[seq][field]; ok {
			seqs = append(seqs, seq)
		}
	}
	return seqs
}
