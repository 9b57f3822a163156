package grid

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/wgrid/internal/value"
)

// Reserved attribute names used when a row is flattened to JSON.
const (
	AttrRowSeq = "_rowSeq"
	AttrState  = "_state"
)

// Row is one entry of a grid's row set.
type Row struct {
	// Seq is the instance-local row identity. Stable under reordering.
	Seq int64

	// State is the dirty-tracking status.
	State State

	// Fields holds the row's values by field name.
	Fields value.Object
}

// Get returns the value of a field, or Null when the field is absent.
func (r *Row) Get(name string) value.Value {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return value.Null{}
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	return &Row{
		Seq:    r.Seq,
		State:  r.State,
		Fields: r.Fields.Clone(),
	}
}

// MarshalJSON flattens the row into a single object carrying the reserved
// _rowSeq and _state attributes next to the fields.
func (r *Row) MarshalJSON() ([]byte, error) {
	flat := make(value.Object, len(r.Fields)+2)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat[AttrRowSeq] = value.Int(r.Seq)
	flat[AttrState] = value.String(r.State)
	return flat.MarshalJSON()
}

// UnmarshalJSON reads the flattened form produced by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var flat value.Object
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	seq, ok := flat[AttrRowSeq].(value.Int)
	if !ok {
		return fmt.Errorf("row: %s missing or not an integer", AttrRowSeq)
	}
	state, ok := flat[AttrState].(value.String)
	if !ok || !State(state).Valid() {
		return fmt.Errorf("row: %s missing or invalid", AttrState)
	}
	delete(flat, AttrRowSeq)
	delete(flat, AttrState)

	r.Seq = int64(seq)
	r.State = State(state)
	r.Fields = flat
	return nil
}
