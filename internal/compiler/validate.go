package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// Validation error codes (E100-E199)
const (
	ErrFieldNameEmpty     = "E101" // field name is required
	ErrDuplicateField     = "E102" // two fields share a name
	ErrInvalidFieldType   = "E103" // unknown field type
	ErrUnknownInsertField = "E104" // insert template names an undefined field
	ErrInvalidOption      = "E105" // merged option fails Options.Validate
	ErrUnknownExceptField = "E106" // exceptList names an undefined field
	ErrCheckboxSentinels  = "E107" // check and uncheck sentinels are equal
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled grid config. Returns all errors found (does not
// fail fast).
func Validate(cfg *grid.Config) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(cfg.Fields))
	for i, f := range cfg.Fields {
		path := fmt.Sprintf("fields[%d]", i)

		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: "field name is required and must be non-empty",
				Code:    ErrFieldNameEmpty,
			})
		} else if names[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
			})
		}
		names[f.Name] = true

		if !f.Type.Valid() {
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
				Code:    ErrInvalidFieldType,
			})
		}
	}

	for _, k := range cfg.Insert.SortedKeys() {
		if !names[k] {
			errs = append(errs, ValidationError{
				Field:   "insert." + k,
				Message: fmt.Sprintf("insert template sets undefined field %q", k),
				Code:    ErrUnknownInsertField,
			})
		}
	}

	opts := grid.MergeOptions(cfg.Options)
	errs = append(errs, optionErrors(opts.Validate())...)

	for i, name := range opts.RowStatusObserve.ExceptList {
		if strings.TrimSpace(name) != "" && !names[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options.rowStatusObserve.exceptList[%d]", i),
				Message: fmt.Sprintf("undefined field %q", name),
				Code:    ErrUnknownExceptField,
			})
		}
	}

	if value.Equal(opts.Checkbox.Check, opts.Checkbox.Uncheck) {
		errs = append(errs, ValidationError{
			Field:   "options.checkbox",
			Message: "check and uncheck values must differ",
			Code:    ErrCheckboxSentinels,
		})
	}

	return errs
}

// optionErrors flattens criterio field errors into validation errors.
func optionErrors(err error) []ValidationError {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "options", Message: err.Error(), Code: ErrInvalidOption}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   "options." + fe.Field,
			Message: fe.Err.Error(),
			Code:    ErrInvalidOption,
		})
	}
	return out
}
