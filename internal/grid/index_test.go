package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wgrid/internal/value"
)

func assertIndexed(t *testing.T, g *Grid) {
	t.Helper()
	for i, row := range g.Data() {
		seq, err := g.IndexSeq(i)
		require.NoError(t, err)
		assert.Equal(t, row.Seq, seq, "indexToSeq[%d]", i)

		idx, err := g.SeqIndex(row.Seq)
		require.NoError(t, err)
		assert.Equal(t, i, idx, "seqToIndex[%d]", row.Seq)
	}
	require.NoError(t, g.Verify())
}

func TestNextSeq_MonotonicAcrossReset(t *testing.T) {
	g := New(Config{})

	var got []int64
	for i := 0; i < 5; i++ {
		got = append(got, g.NextSeq())
	}
	g.ResetCaches()
	for i := 0; i < 5; i++ {
		got = append(got, g.NextSeq())
	}

	want := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, want, got)
	assert.Equal(t, int64(10), g.CurrentSeq())
}

func TestNextSeq_PerInstance(t *testing.T) {
	a := New(Config{})
	b := New(Config{})

	assert.Equal(t, int64(1), a.NextSeq())
	assert.Equal(t, int64(1), b.NextSeq())
	assert.Equal(t, int64(2), a.NextSeq())
	assert.Greater(t, b.Sequence(), a.Sequence())
}

func TestIndex_HoldsAfterEveryStructuralChange(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b", "c", "d"), Parameter{}))
	assertIndexed(t, g)

	_, err := g.InsertRow(nil)
	require.NoError(t, err)
	assertIndexed(t, g)

	require.NoError(t, g.MoveRow(4, 0))
	assertIndexed(t, g)

	require.NoError(t, g.RemoveRow(5))
	assertIndexed(t, g)

	require.NoError(t, g.MoveRow(0, 2))
	assertIndexed(t, g)

	require.NoError(t, g.AppendData(&Row{Seq: g.NextSeq(), State: StateInsert, Fields: value.Object{}}))
	assertIndexed(t, g)

	g.ResetCaches()
	assertIndexed(t, g)
}

func TestIndex_LazyRebuildAfterMove(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b", "c"), Parameter{}))

	i, err := g.SeqIndex(1)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	require.NoError(t, g.MoveRow(0, 2))

	i, err = g.SeqIndex(1)
	require.NoError(t, err)
	assert.Equal(t, 2, i, "read after move sees the new position")
}

func TestReindex_EvictsHandles(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b"), Parameter{}))
	g.SetRowHandle(1, "row-1")
	g.SetRowHandle(2, "row-2")
	g.SetCellHandle(1, "check", &cell{})

	g.Reindex(1)

	_, err := g.RowHandle(1)
	assert.True(t, IsNotFound(err))
	_, err = g.CellHandle(1, "check")
	assert.True(t, IsNotFound(err))

	h, err := g.RowHandle(2)
	require.NoError(t, err)
	assert.Equal(t, "row-2", h)
}

func TestResetCaches_KeepsRows(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b"), Parameter{}))
	g.SetRowHandle(1, "row-1")
	g.SetCellHandle(2, "check", &cell{})

	g.ResetCaches()

	assert.Equal(t, 2, g.Len())
	_, err := g.RowHandle(1)
	assert.True(t, IsNotFound(err))
	_, err = g.CellHandle(2, "check")
	assert.True(t, IsNotFound(err))
	assertIndexed(t, g)
}

func TestRawIndexWrites_DetectedByVerify(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b"), Parameter{}))
	require.NoError(t, g.Verify())

	g.SetSeqIndex(1, 1)
	err := g.Verify()
	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))

	g.Reindex()
	require.NoError(t, g.Verify())

	g.SetIndexSeq(0, 2)
	assert.True(t, IsInvariantViolation(g.Verify()))

	g.SetIndexSeq(7, 9)
	g.Reindex()
	g.SetIndexSeq(7, 9)
	assert.True(t, IsInvariantViolation(g.Verify()), "extra entries are a violation")
}

func TestRawIndexWrites_Readable(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a"), Parameter{}))
	g.Reindex()

	g.SetSeqIndex(42, 7)
	i, err := g.SeqIndex(42)
	require.NoError(t, err)
	assert.Equal(t, 7, i)

	g.SetIndexSeq(7, 42)
	seq, err := g.IndexSeq(7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestIndexLookups_NotFound(t *testing.T) {
	g := New(Config{})

	_, err := g.SeqIndex(1)
	assert.True(t, IsNotFound(err))
	_, err = g.IndexSeq(0)
	assert.True(t, IsNotFound(err))
	_, err = g.FirstRowSeq()
	assert.True(t, IsNotFound(err))
	_, err = g.FirstRowHandle()
	assert.True(t, IsNotFound(err))
}

func TestFirstRow(t *testing.T) {
	g := New(Config{})
	require.NoError(t, g.SetData(named("a", "b"), Parameter{}))

	seq, err := g.FirstRowSeq()
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	_, err = g.FirstRowHandle()
	assert.True(t, IsNotFound(err), "first row not painted yet")

	g.SetRowHandle(1, "row-1")
	h, err := g.FirstRowHandle()
	require.NoError(t, err)
	assert.Equal(t, "row-1", h)

	require.NoError(t, g.MoveRow(1, 0))
	seq, err = g.FirstRowSeq()
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestCellHandle_Uncached(t *testing.T) {
	g := New(Config{})
	g.SetCellHandle(1, "a", &cell{})

	_, err := g.CellHandle(1, "b")
	require.Error(t, err)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrCodeNotFound, ge.Code)
	assert.Equal(t, int64(1), ge.Seq)
	assert.Equal(t, "b", ge.Field)
}

// cell is a minimal CellHandle.
type cell struct {
	checked bool
	owner   int64
}

func (c *cell) Checked() bool           { return c.checked }
func (c *cell) SetChecked(checked bool) { c.checked = checked }
