// Package memory is an in-process row source, used by scenarios and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// DefaultKey is the field holding the row key.
const DefaultKey = "id"

// ErrRowNotFound is returned when an update or delete names an unknown key.
var ErrRowNotFound = errors.New("row not found")

// Table holds rows in insertion order, keyed by an integer key field.
//
// Thread-safety: safe for concurrent use.
type Table struct {
	mu     sync.Mutex
	key    string
	rows   []value.Object
	nextID int64
}

var (
	_ grid.Source  = (*Table)(nil)
	_ grid.Applier = (*Table)(nil)
)

// New creates a table. Rows without an integer key field get a key above
// every explicit key in rows; key is the field name, empty means DefaultKey.
func New(key string, rows ...value.Object) *Table {
	if key == "" {
		key = DefaultKey
	}
	t := &Table{key: key}
	for _, r := range rows {
		if id, ok := r[key].(value.Int); ok {
			t.nextID = max(t.nextID, int64(id))
		}
	}
	for _, r := range rows {
		t.add(r.Clone())
	}
	return t
}

func (t *Table) add(fields value.Object) value.Object {
	if fields == nil {
		fields = value.Object{}
	}
	if id, ok := fields[t.key].(value.Int); ok {
		t.nextID = max(t.nextID, int64(id))
	} else {
		t.nextID++
		fields[t.key] = value.Int(t.nextID)
	}
	t.rows = append(t.rows, fields)
	return fields
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Count is Len with the signature sql-backed tables share.
func (t *Table) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// Rows returns deep copies of all rows in insertion order.
func (t *Table) Rows() []value.Object {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]value.Object, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// Search returns the rows whose fields equal every params.Values entry, one
// page at a time when PageSize is set.
func (t *Table) Search(ctx context.Context, params grid.Parameter) (grid.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return grid.SearchResult{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var matched []value.Object
	for _, r := range t.rows {
		if matches(r, params.Values) {
			matched = append(matched, r)
		}
	}

	page := matched
	if p := params.Paging; p.PageSize > 0 {
		start := min(p.Offset(), len(matched))
		end := min(start+p.PageSize, len(matched))
		page = matched[start:end]
	}

	out := make([]value.Object, len(page))
	for i, r := range page {
		out[i] = r.Clone()
	}
	res := params.Clone()
	res.Paging.TotalCount = len(matched)
	return grid.SearchResult{Rows: out, Params: res}, nil
}

func matches(row, filters value.Object) bool {
	for name, want := range filters {
		got, ok := row[name]
		if !ok || !value.Equal(got, want) {
			return false
		}
	}
	return true
}

// Apply writes a change set. It is all or nothing: the change set is applied
// to a copy that replaces the table only when every change succeeded.
func (t *Table) Apply(ctx context.Context, cs grid.ChangeSet) (grid.ApplyResult, error) {
	if err := ctx.Err(); err != nil {
		return grid.ApplyResult{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	work := &Table{key: t.key, rows: append([]value.Object(nil), t.rows...), nextID: t.nextID}
	var res grid.ApplyResult

	for _, c := range cs.Inserts {
		fields := c.Fields.Clone()
		delete(fields, t.key)
		work.add(fields)
		res.Inserted++
	}
	for _, c := range cs.Updates {
		i, err := work.find(c)
		if err != nil {
			return grid.ApplyResult{}, fmt.Errorf("apply %s: update seq %d: %w", cs.ID, c.Seq, err)
		}
		fields := c.Fields.Clone()
		fields[t.key] = work.rows[i][t.key]
		work.rows[i] = fields
		res.Updated++
	}
	for _, c := range cs.Deletes {
		i, err := work.find(c)
		if err != nil {
			return grid.ApplyResult{}, fmt.Errorf("apply %s: delete seq %d: %w", cs.ID, c.Seq, err)
		}
		work.rows = append(work.rows[:i:i], work.rows[i+1:]...)
		res.Deleted++
	}

	t.rows = work.rows
	t.nextID = work.nextID
	return res, nil
}

func (t *Table) find(c grid.Change) (int, error) {
	var key value.Value
	for _, fields := range []value.Object{c.Fields, c.Origin} {
		if k, ok := fields[t.key].(value.Int); ok {
			key = k
			break
		}
	}
	if key == nil {
		return -1, fmt.Errorf("missing integer %q field", t.key)
	}
	for i, r := range t.rows {
		if value.Equal(r[t.key], key) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s %v: %w", t.key, key, ErrRowNotFound)
}
