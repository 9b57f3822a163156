package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

func TestStaticIDGenerator(t *testing.T) {
	gen := NewStaticIDGenerator("cs-1")
	assert.Equal(t, "cs-1", gen.Generate())
	assert.Equal(t, "cs-1", gen.Generate())

	assert.Equal(t, "test-changeset", NewStaticIDGenerator("").Generate())
}

func TestObj(t *testing.T) {
	obj := Obj("name", "a", "qty", 3, "ok", true)
	assert.Equal(t, value.Object{
		"name": value.String("a"),
		"qty":  value.Int(3),
		"ok":   value.Bool(true),
	}, obj)

	assert.Panics(t, func() { Obj("name") })
	assert.Panics(t, func() { Obj(1, "a") })
}

func TestNamed(t *testing.T) {
	rows := Named("a", "b")
	require.Len(t, rows, 2)
	assert.Equal(t, value.String("b"), rows[1]["name"])
}

func TestFakeRenderer_PaintsOnRefresh(t *testing.T) {
	r := &FakeRenderer{Paint: []string{"check"}}
	g := grid.New(grid.Config{Name: "t"}, grid.WithRenderer(r))

	rows := Named("a", "b")
	rows[1]["check"] = value.Bool(true)
	require.NoError(t, g.SetData(rows, grid.Parameter{}))

	assert.Equal(t, 1, r.Refreshes)
	h, err := g.RowHandle(1)
	require.NoError(t, err)
	assert.Equal(t, &FakeRow{Seq: 1}, h)

	cell, err := g.CellHandle(2, "check")
	require.NoError(t, err)
	assert.True(t, cell.Checked())

	seq, ok := OwnerResolver(cell)
	assert.True(t, ok)
	assert.Equal(t, int64(2), seq)
}

func TestFakeRenderer_RecordsStateChanges(t *testing.T) {
	r := &FakeRenderer{}
	g := grid.New(grid.Config{
		Options: grid.PartialOptions{IsRowStatusObserve: boolPtr(true)},
	}, grid.WithRenderer(r))
	require.NoError(t, g.SetData(Named("a"), grid.Parameter{}))

	require.NoError(t, g.UpdateField(1, "name", value.String("z")))
	assert.Equal(t, []int64{1}, r.Changed)
}

func boolPtr(b bool) *bool { return &b }
