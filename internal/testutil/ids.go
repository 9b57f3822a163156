package testutil

// StaticIDGenerator returns the same change set id every time.
//
// Scenario traces embed the change set id, so a constant id keeps golden
// files byte-identical across runs. grid.FixedGenerator returns ids in
// sequence instead.
//
// Thread-safety: stateless, safe for concurrent use.
type StaticIDGenerator struct {
	id string
}

// NewStaticIDGenerator creates a generator for id. An empty id becomes
// "test-changeset".
func NewStaticIDGenerator(id string) *StaticIDGenerator {
	if id == "" {
		id = "test-changeset"
	}
	return &StaticIDGenerator{id: id}
}

// Generate returns the fixed id. Implements grid.IDGenerator.
func (g *StaticIDGenerator) Generate() string {
	return g.id
}
