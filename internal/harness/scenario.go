package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wgrid/internal/grid"
)

// Scenario is one scripted editing session against a grid.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Definitions is a directory of CUE grid definitions, relative to the
	// scenario file. Grid selects one of them. When empty, Fields, Insert and
	// Options describe the grid inline.
	Definitions string `yaml:"definitions,omitempty"`
	Grid        string `yaml:"grid,omitempty"`

	Fields  []string             `yaml:"fields,omitempty"`
	Insert  map[string]any       `yaml:"insert,omitempty"`
	Options *grid.PartialOptions `yaml:"options,omitempty"`

	// Source seeds the in-memory backend. Ignored when the caller supplies
	// its own backend.
	Source SourceSpec `yaml:"source,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`

	// ChangeSetID is the id every submitted change set carries.
	// Defaults to "test-changeset" so traces are reproducible.
	ChangeSetID string `yaml:"changeset_id,omitempty"`
}

// SourceSpec is the initial content of the in-memory backend.
type SourceSpec struct {
	Key  string           `yaml:"key,omitempty"`
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// Step is one grid operation.
type Step struct {
	Op string `yaml:"op"`

	// Rows are the rows for set_data.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Values are the fields for insert. Nil uses the insert template.
	Values map[string]any `yaml:"values,omitempty"`

	Seq   int64  `yaml:"seq,omitempty"`
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
	Path  string `yaml:"path,omitempty"`

	From int `yaml:"from,omitempty"`
	To   int `yaml:"to,omitempty"`

	Checked bool `yaml:"checked,omitempty"`

	// Filter, Page and Size build the load query.
	Filter map[string]any `yaml:"filter,omitempty"`
	Page   int            `yaml:"page,omitempty"`
	Size   int            `yaml:"size,omitempty"`

	// ExpectError is the grid error code the step must fail with.
	ExpectError grid.ErrorCode `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpLoad         = "load"
	OpSetData      = "set_data"
	OpInsert       = "insert"
	OpUpdate       = "update"
	OpRemove       = "remove"
	OpRestore      = "restore"
	OpMove         = "move"
	OpCheckAll     = "check_all"
	OpPaint        = "paint"
	OpResetCaches  = "reset_caches"
	OpChangeOption = "change_option"
	OpSubmit       = "submit"
	OpDispose      = "dispose"
)

// Assertion checks the grid or backend after all steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	// Count is used by row_count and source_count.
	Count int `yaml:"count,omitempty"`

	// States maps a state name to the expected sequences in row order
	// (states). States not listed must be empty.
	States map[grid.State][]int64 `yaml:"states,omitempty"`

	// Field and Seqs are used by checked_seqs; Seq and Expect by row;
	// Seq and Fields by modified.
	Field  string         `yaml:"field,omitempty"`
	Seqs   []int64        `yaml:"seqs,omitempty"`
	Seq    int64          `yaml:"seq,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
	Fields []string       `yaml:"fields,omitempty"`

	// Applied totals over all submit steps (applied).
	Applied *grid.ApplyResult `yaml:"applied,omitempty"`

	// Option is a dotted option path, Value its expected value (option).
	Option string `yaml:"option,omitempty"`
	Value  any    `yaml:"value,omitempty"`
}

// Assertion types.
const (
	AssertRowCount    = "row_count"
	AssertStates      = "states"
	AssertCheckedSeqs = "checked_seqs"
	AssertRow         = "row"
	AssertModified    = "modified"
	AssertApplied     = "applied"
	AssertSourceCount = "source_count"
	AssertOption      = "option"
)

// LoadScenario reads and parses a scenario YAML file. Unknown keys are
// rejected and the definitions directory is resolved against the file's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if sc.Definitions != "" && !filepath.IsAbs(sc.Definitions) {
		sc.Definitions = filepath.Join(filepath.Dir(path), sc.Definitions)
	}
	if sc.Definitions != "" {
		if _, err := os.Stat(sc.Definitions); err != nil {
			return nil, fmt.Errorf("invalid scenario: definitions: %w", err)
		}
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario. Relative definition paths
// are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Definitions != "" && s.Grid == "":
		return fmt.Errorf("grid is required with definitions")
	case s.Definitions != "" && len(s.Fields) > 0:
		return fmt.Errorf("fields and definitions are mutually exclusive")
	case s.Definitions == "" && len(s.Fields) == 0:
		return fmt.Errorf("either definitions or fields is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, s *Step) error {
	switch s.Op {
	case OpLoad, OpSetData, OpInsert, OpMove, OpPaint, OpResetCaches, OpSubmit, OpDispose:
	case OpUpdate:
		if s.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for update", i)
		}
		fallthrough
	case OpRemove, OpRestore:
		if s.Seq <= 0 {
			return fmt.Errorf("steps[%d]: seq is required for %s", i, s.Op)
		}
	case OpCheckAll:
		if s.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for check_all", i)
		}
	case OpChangeOption:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for change_option", i)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, s.Op)
	}
	return nil
}

func validateAssertion(i int, a *Assertion) error {
	switch a.Type {
	case AssertRowCount, AssertSourceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", i, a.Type)
		}
	case AssertStates:
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states is required", i)
		}
		for st := range a.States {
			if !st.Valid() {
				return fmt.Errorf("assertions[%d]: unknown state %q", i, st)
			}
		}
	case AssertCheckedSeqs:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for checked_seqs", i)
		}
	case AssertRow:
		if a.Seq <= 0 || len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: seq and expect are required for row", i)
		}
	case AssertModified:
		if a.Seq <= 0 {
			return fmt.Errorf("assertions[%d]: seq is required for modified", i)
		}
	case AssertApplied:
		if a.Applied == nil {
			return fmt.Errorf("assertions[%d]: applied is required", i)
		}
	case AssertOption:
		if a.Option == "" {
			return fmt.Errorf("assertions[%d]: option is required", i)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
