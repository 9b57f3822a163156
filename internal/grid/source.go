package grid

import (
	"context"
	"fmt"

	"github.com/roach88/wgrid/internal/value"
)

// SearchResult is what a source returns for one query.
type SearchResult struct {
	Rows   []value.Object
	Params Parameter
}

// Source produces rows for a query.
type Source interface {
	Search(ctx context.Context, params Parameter) (SearchResult, error)
}

// ApplyResult counts the rows a change set touched.
type ApplyResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// Applier persists change sets.
type Applier interface {
	Apply(ctx context.Context, cs ChangeSet) (ApplyResult, error)
}

// Search queries src and loads the result with SetData. The stored paging
// window is the caller's; only TotalCount is taken from the source.
func (g *Grid) Search(ctx context.Context, src Source, params Parameter) error {
	if err := g.checkLive(0, "search"); err != nil {
		return err
	}
	res, err := src.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search grid %q: %w", g.name, err)
	}

	stored := params.Clone()
	stored.Paging.TotalCount = res.Params.Paging.TotalCount
	return g.SetData(res.Rows, stored)
}

// Submit applies the pending change set through ap. An empty change set is
// not sent. The grid itself is not reloaded; callers Search again on success.
func (g *Grid) Submit(ctx context.Context, ap Applier, gen IDGenerator) (ChangeSet, ApplyResult, error) {
	if err := g.checkLive(0, "submit"); err != nil {
		return ChangeSet{}, ApplyResult{}, err
	}
	cs := g.ChangeSet(gen)
	if cs.Empty() {
		return cs, ApplyResult{}, nil
	}

	res, err := ap.Apply(ctx, cs)
	if err != nil {
		return cs, ApplyResult{}, fmt.Errorf("apply change set %s: %w", cs.ID, err)
	}
	g.logger.Debug().Str("changeSet", cs.ID).
		Int("inserted", res.Inserted).Int("updated", res.Updated).Int("deleted", res.Deleted).
		Msg("change set applied")
	return cs, res, nil
}
