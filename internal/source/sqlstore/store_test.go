package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/testutil"
	"github.com/roach88/wgrid/internal/value"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seeded(t *testing.T, s *Store) *Table {
	t.Helper()
	tbl := s.Table("items", "")
	ids, err := tbl.Seed(context.Background(), []value.Object{
		testutil.Obj("name", "a", "kind", "x", "qty", 1, "use", true),
		testutil.Obj("name", "b", "kind", "y", "qty", 2, "use", false),
		testutil.Obj("name", "c", "kind", "x", "qty", 3, "use", true),
		testutil.Obj("name", "d", "kind", "x", "qty", 4, "use", false),
		testutil.Obj("name", "e", "kind", "y", "qty", 5, "use", true),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	return tbl
}

func names(rows []value.Object) []string {
	var out []string
	for _, r := range rows {
		out = append(out, string(r["name"].(value.String)))
	}
	return out
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.db")
	for i := 0; i < 3; i++ {
		s, err := Open(context.Background(), "sqlite3", path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestSearch_AllOrderedByID(t *testing.T) {
	tbl := seeded(t, openSQLite(t))

	res, err := tbl.Search(context.Background(), grid.Parameter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names(res.Rows))
	assert.Equal(t, 5, res.Params.Paging.TotalCount)
	assert.Equal(t, value.Int(1), res.Rows[0]["id"])
	assert.Equal(t, value.Int(1), res.Rows[0]["qty"])
	assert.Equal(t, value.Bool(true), res.Rows[0]["use"])
}

func TestSearch_Paging(t *testing.T) {
	tbl := seeded(t, openSQLite(t))

	params := grid.Parameter{Paging: grid.Paging{PageNo: 2, PageSize: 2, PageBlock: 10}}
	res, err := tbl.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "d"}, names(res.Rows))
	assert.Equal(t, grid.Paging{PageNo: 2, PageSize: 2, PageBlock: 10, TotalCount: 5}, res.Params.Paging)
}

func TestSearch_Filters(t *testing.T) {
	tbl := seeded(t, openSQLite(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		filters value.Object
		want    []string
	}{
		{"string", testutil.Obj("kind", "x"), []string{"a", "c", "d"}},
		{"int", testutil.Obj("qty", 2), []string{"b"}},
		{"bool", testutil.Obj("use", true), []string{"a", "c", "e"}},
		{"combined", testutil.Obj("kind", "y", "use", true), []string{"e"}},
		{"key", testutil.Obj("id", 4), []string{"d"}},
		{"no match", testutil.Obj("kind", "z"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tbl.Search(ctx, grid.Parameter{Values: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res.Rows))
			assert.Equal(t, len(tt.want), res.Params.Paging.TotalCount)
		})
	}
}

func TestSearch_RejectsBadFilters(t *testing.T) {
	tbl := seeded(t, openSQLite(t))
	ctx := context.Background()

	_, err := tbl.Search(ctx, grid.Parameter{Values: value.Object{"bad name": value.String("x")}})
	assert.Error(t, err)
	_, err = tbl.Search(ctx, grid.Parameter{Values: value.Object{"qty": value.Float(1.5)}})
	assert.Error(t, err)
	_, err = tbl.Search(ctx, grid.Parameter{Values: value.Object{"id": value.String("x")}})
	assert.Error(t, err)
}

func TestSearch_GridsAreSeparate(t *testing.T) {
	s := openSQLite(t)
	seeded(t, s)

	other := s.Table("other", "")
	_, err := other.Seed(context.Background(), []value.Object{testutil.Obj("name", "z")})
	require.NoError(t, err)

	res, err := other.Search(context.Background(), grid.Parameter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, names(res.Rows))
}

func TestApply_EndToEnd(t *testing.T) {
	s := openSQLite(t)
	tbl := seeded(t, s)
	ctx := context.Background()

	g := grid.New(grid.Config{Name: "items"})
	require.NoError(t, g.Search(ctx, tbl, grid.Parameter{}))

	require.NoError(t, g.UpdateField(1, "qty", value.Int(10)))
	require.NoError(t, g.RemoveRow(2))
	_, err := g.InsertRow(testutil.Obj("name", "f", "kind", "z"))
	require.NoError(t, err)

	_, res, err := g.Submit(ctx, tbl, grid.NewFixedGenerator("cs-1"))
	require.NoError(t, err)
	assert.Equal(t, grid.ApplyResult{Inserted: 1, Updated: 1, Deleted: 1}, res)

	require.NoError(t, g.Search(ctx, tbl, grid.Parameter{}))
	assert.Equal(t, 5, g.Len())
	assert.Empty(t, g.ApplyData())

	first, err := g.Row(0)
	require.NoError(t, err)
	assert.Equal(t, value.Int(10), first.Get("qty"))

	last, err := g.Row(4)
	require.NoError(t, err)
	assert.Equal(t, value.String("f"), last.Get("name"))
	assert.Equal(t, value.Int(6), last.Get("id"))
}

func TestApply_RollsBackOnMissingRow(t *testing.T) {
	tbl := seeded(t, openSQLite(t))
	ctx := context.Background()

	cs := grid.ChangeSet{
		ID:      "cs-bad",
		Inserts: []grid.Change{{Seq: 1, Fields: testutil.Obj("name", "new")}},
		Deletes: []grid.Change{{Seq: 2, Origin: testutil.Obj("id", 99)}},
	}
	_, err := tbl.Apply(ctx, cs)
	require.ErrorIs(t, err, ErrRowNotFound)

	n, err := tbl.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "insert rolled back")
}

func TestApply_MissingKey(t *testing.T) {
	tbl := seeded(t, openSQLite(t))

	_, err := tbl.Apply(context.Background(), grid.ChangeSet{
		ID:      "cs",
		Updates: []grid.Change{{Seq: 1, Fields: testutil.Obj("name", "x")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing integer "id" field`)
}

func TestPayload_IsCanonicalWithoutKey(t *testing.T) {
	s := openSQLite(t)
	tbl := s.Table("items", "")
	_, err := tbl.Seed(context.Background(), []value.Object{testutil.Obj("id", 77, "b", 1, "a", "x")})
	require.NoError(t, err)

	var payload, fp string
	require.NoError(t, s.DB().QueryRow("SELECT payload, fingerprint FROM grid_rows").Scan(&payload, &fp))
	assert.Equal(t, `{"a":"x","b":1}`, payload)

	want, err := value.RowFingerprint(testutil.Obj("a", "x", "b", 1))
	require.NoError(t, err)
	assert.Equal(t, want, fp)
}

func TestCustomKey(t *testing.T) {
	s := openSQLite(t)
	tbl := s.Table("items", "rowId")
	_, err := tbl.Seed(context.Background(), []value.Object{testutil.Obj("name", "a")})
	require.NoError(t, err)

	res, err := tbl.Search(context.Background(), grid.Parameter{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, value.Int(1), res.Rows[0]["rowId"])
	assert.NotContains(t, res.Rows[0], "id")
}

func TestRebind(t *testing.T) {
	q := "SELECT 1 WHERE a = ? AND b = ?"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", Postgres.rebind(q))
}

func TestStatements(t *testing.T) {
	for _, d := range []Dialect{SQLite, Postgres} {
		stmts := d.statements()
		require.Len(t, stmts, 2, d.Driver)
		assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS grid_rows")
		assert.Contains(t, stmts[1], "CREATE INDEX IF NOT EXISTS")
	}
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d.Driver)

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.Driver)
}

// TestPostgres runs the round trip against a live server when
// WGRID_POSTGRES_DSN is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("WGRID_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WGRID_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, "pgx", dsn)
	require.NoError(t, err)
	defer s.Close()

	tbl := s.Table("wgrid-test-"+t.Name(), "")
	t.Cleanup(func() {
		_, _ = s.DB().ExecContext(ctx, "DELETE FROM grid_rows WHERE grid = $1", "wgrid-test-"+t.Name())
	})

	_, err = tbl.Seed(ctx, []value.Object{
		testutil.Obj("name", "a", "use", true),
		testutil.Obj("name", "b", "use", false),
	})
	require.NoError(t, err)

	res, err := tbl.Search(ctx, grid.Parameter{Values: testutil.Obj("use", true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(res.Rows))
}
