package harness

import (
	"fmt"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// TraceEvent records one executed step and the row set after it.
type TraceEvent struct {
	Step int    `json:"step"`
	Op   string `json:"op"`

	// Seq is the row the step touched, or the new row for insert.
	Seq int64 `json:"seq,omitempty"`

	// Error is the grid error code the step failed with.
	Error grid.ErrorCode `json:"error,omitempty"`

	// Rows lists "seq:STATE" for every row, in row order.
	Rows []string `json:"rows"`

	// ChangeSet and Applied are set by submit steps.
	ChangeSet string            `json:"changeset,omitempty"`
	Applied   *grid.ApplyResult `json:"applied,omitempty"`
}

// Object converts the event to a value for canonical encoding.
func (e TraceEvent) Object() value.Object {
	rows := make(value.Array, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = value.String(r)
	}
	obj := value.Object{
		"step": value.Int(e.Step),
		"op":   value.String(e.Op),
		"rows": rows,
	}
	if e.Seq != 0 {
		obj["seq"] = value.Int(e.Seq)
	}
	if e.Error != "" {
		obj["error"] = value.String(e.Error)
	}
	if e.ChangeSet != "" {
		obj["changeset"] = value.String(e.ChangeSet)
	}
	if e.Applied != nil {
		obj["applied"] = value.Object{
			"inserted": value.Int(e.Applied.Inserted),
			"updated":  value.Int(e.Applied.Updated),
			"deleted":  value.Int(e.Applied.Deleted),
		}
	}
	return obj
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step and assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Applied totals the counts of all submit steps.
	Applied grid.ApplyResult `json:"applied"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

func rowStates(g *grid.Grid) []string {
	rows := g.Data()
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = fmt.Sprintf("%d:%s", row.Seq, row.State)
	}
	return out
}
