package grid

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/wgrid/internal/value"
)

// IDGenerator produces change set ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids, for deterministic tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id. Panics once all ids are consumed.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Change is one pending row change.
type Change struct {
	Seq int64 `json:"seq"`

	// Fields is the row as it is now.
	Fields value.Object `json:"fields"`

	// Origin is the row as it was loaded. Nil for inserts.
	Origin value.Object `json:"origin,omitempty"`
}

// ChangeSet is the apply set of a grid grouped by state.
type ChangeSet struct {
	ID      string   `json:"id"`
	Grid    string   `json:"grid,omitempty"`
	Inserts []Change `json:"inserts"`
	Updates []Change `json:"updates"`
	Deletes []Change `json:"deletes"`
}

// Empty reports whether the change set carries no changes.
func (cs ChangeSet) Empty() bool {
	return len(cs.Inserts) == 0 && len(cs.Updates) == 0 && len(cs.Deletes) == 0
}

// Len returns the number of changes.
func (cs ChangeSet) Len() int {
	return len(cs.Inserts) + len(cs.Updates) + len(cs.Deletes)
}

// ChangeSet packages ApplyData for submission. Rows are deep-copied, so the
// result stays valid while the grid keeps changing.
func (g *Grid) ChangeSet(gen IDGenerator) ChangeSet {
	cs := ChangeSet{
		ID:      gen.Generate(),
		Grid:    g.name,
		Inserts: []Change{},
		Updates: []Change{},
		Deletes: []Change{},
	}
	for _, row := range g.ApplyData() {
		c := Change{Seq: row.Seq, Fields: row.Fields.Clone(), Origin: g.origin[row.Seq].Clone()}
		switch row.State {
		case StateInsert:
			c.Origin = nil
			cs.Inserts = append(cs.Inserts, c)
		case StateUpdate:
			cs.Updates = append(cs.Updates, c)
		case StateRemove:
			cs.Deletes = append(cs.Deletes, c)
		}
	}
	return cs
}
