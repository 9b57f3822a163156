package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// CompileGrid turns a CUE grid definition into a grid.Config.
// Uses the CUE SDK's Go API directly.
//
// The value should be the grid struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`grid: items: { fields: [...] }`)
//	cfg, err := CompileGrid(v.LookupPath(cue.ParsePath("grid.items")))
func CompileGrid(v cue.Value) (*grid.Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &grid.Config{}

	// Grid name comes from the struct label.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		cfg.Name = labels[len(labels)-1].String()
	}

	var err error
	cfg.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}
	if len(cfg.Fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}

	insertVal := v.LookupPath(cue.ParsePath("insert"))
	if insertVal.Exists() {
		cfg.Insert, err = decodeObject(insertVal, "insert")
		if err != nil {
			return nil, err
		}
	}

	optionsVal := v.LookupPath(cue.ParsePath("options"))
	if optionsVal.Exists() {
		cfg.Options, err = decodeOptions(optionsVal)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// parseFields extracts the ordered column list.
func parseFields(v cue.Value) ([]grid.Field, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []grid.Field
	for i := 0; iter.Next(); i++ {
		f, err := parseField(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseField(v cue.Value, i int) (grid.Field, error) {
	f := grid.Field{Type: grid.FieldText}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return f, &CompileError{
			Field:   fmt.Sprintf("fields[%d].name", i),
			Message: "field name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return f, formatCUEError(err)
	}
	f.Name = name

	strs := []struct {
		key string
		dst *string
	}{
		{"label", &f.Label},
		{"width", &f.Width},
		{"align", &f.Align},
	}
	for _, s := range strs {
		sv := v.LookupPath(cue.ParsePath(s.key))
		if !sv.Exists() {
			continue
		}
		if *s.dst, err = sv.String(); err != nil {
			return f, formatCUEError(err)
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		t, err := typeVal.String()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.Type = grid.FieldType(t)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"editable", &f.Editable},
		{"hidden", &f.Hidden},
	}
	for _, b := range bools {
		bv := v.LookupPath(cue.ParsePath(b.key))
		if !bv.Exists() {
			continue
		}
		if *b.dst, err = bv.Bool(); err != nil {
			return f, formatCUEError(err)
		}
	}

	return f, nil
}

// decodeObject exports a concrete CUE struct as a row object.
func decodeObject(v cue.Value, field string) (value.Object, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	decoded, err := value.Unmarshal(data)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	obj, ok := decoded.(value.Object)
	if !ok {
		return nil, &CompileError{Field: field, Message: "must be a struct", Pos: v.Pos()}
	}
	return obj, nil
}

// decodeOptions exports the options struct and decodes it strictly, so a
// misspelled option is an error rather than a silently ignored member.
func decodeOptions(v cue.Value) (grid.PartialOptions, error) {
	var opts grid.PartialOptions

	data, err := v.MarshalJSON()
	if err != nil {
		return opts, formatCUEError(err)
	}
	if err := decodeStrictJSON(data, &opts); err != nil {
		return opts, &CompileError{Field: "options", Message: err.Error(), Pos: v.Pos()}
	}
	return opts, nil
}

func decodeStrictJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
