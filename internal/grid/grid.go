package grid

import (
	"github.com/rs/zerolog"

	"github.com/roach88/wgrid/internal/value"
)

// FieldType is the editor kind of a column.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldCheckbox, FieldSelect, FieldDate:
		return true
	}
	return false
}

// Field describes one column.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label,omitempty"`
	Type     FieldType `json:"type"`
	Width    string    `json:"width,omitempty"`
	Align    string    `json:"align,omitempty"`
	Editable bool      `json:"editable,omitempty"`
	Hidden   bool      `json:"hidden,omitempty"`
}

// Config is everything a grid needs at construction.
type Config struct {
	// Name identifies the grid in logs and definitions.
	Name string

	// Fields are the column definitions in display order.
	Fields []Field

	// Insert is the default row template for InsertRow. Nil means none.
	Insert value.Object

	// Options are merged over DefaultOptions.
	Options PartialOptions
}

// Grid is one grid instance: its repository, its index and its options.
//
// A Grid is not safe for concurrent use.
type Grid struct {
	seq    int64
	name   string
	fields []Field
	insert value.Object

	options Options

	// repository
	rows   []*Row
	origin map[int64]value.Object
	param  Parameter

	// index
	clock      *Clock
	seqToIndex map[int64]int
	indexToSeq map[int]int64
	rowHandles map[int64]any
	cells      map[int64]map[string]CellHandle
	dirty      bool

	renderer Renderer
	resolver RowResolver
	logger   zerolog.Logger
	disposed bool
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithLogger sets the logger grid events are written to. Default: no logging.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Grid) {
		g.logger = l
	}
}

// WithRenderer installs the view layer's repaint hooks.
func WithRenderer(r Renderer) Option {
	return func(g *Grid) {
		if r != nil {
			g.renderer = r
		}
	}
}

// WithRowResolver installs the cell-to-row lookup used by CheckedSeqs.
func WithRowResolver(fn RowResolver) Option {
	return func(g *Grid) {
		g.resolver = fn
	}
}

// New creates a grid instance with a fresh instance sequence. It never fails;
// options that would not render are reported by Options().Validate().
func New(cfg Config, opts ...Option) *Grid {
	g := &Grid{
		seq:        instances.Next(),
		name:       cfg.Name,
		fields:     append([]Field(nil), cfg.Fields...),
		insert:     cfg.Insert.Clone(),
		origin:     make(map[int64]value.Object),
		clock:      NewClock(),
		seqToIndex: make(map[int64]int),
		indexToSeq: make(map[int]int64),
		rowHandles: make(map[int64]any),
		cells:      make(map[int64]map[string]CellHandle),
		renderer:   nopRenderer{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Int64("grid", g.seq).Str("name", g.name).Logger()
	g.SettingOption(cfg.Options)

	g.logger.Debug().Int("fields", len(g.fields)).Msg("grid created")
	return g
}

// Sequence returns the process-wide instance sequence.
func (g *Grid) Sequence() int64 {
	return g.seq
}

// Name returns the configured grid name.
func (g *Grid) Name() string {
	return g.name
}

// Options returns a copy of the merged options.
func (g *Grid) Options() Options {
	o := g.options
	o.RowStatusObserve.ExceptList = append([]string{}, o.RowStatusObserve.ExceptList...)
	o.Style.Overflow.X = cloneString(o.Style.Overflow.X)
	o.Style.Overflow.Y = cloneString(o.Style.Overflow.Y)
	o.Checkbox.Check = value.Clone(o.Checkbox.Check)
	o.Checkbox.Uncheck = value.Clone(o.Checkbox.Uncheck)
	return o
}

// SettingOption merges raw over the defaults and replaces the previous options
// wholesale. Previously changed options are not carried over.
func (g *Grid) SettingOption(raw PartialOptions) {
	g.options = MergeOptions(raw)
}

// ChangeOption overwrites a single option by its dotted path, e.g.
// "style.row.isChose". Unknown paths and mistyped values fail with
// INVALID_OPTION and leave the options untouched.
func (g *Grid) ChangeOption(path string, v any) error {
	if g.disposed {
		return g.errorf(ErrCodeDisposed, 0, path, "change option")
	}
	next := g.options
	next.RowStatusObserve.ExceptList = append([]string{}, g.options.RowStatusObserve.ExceptList...)
	if err := next.applyOption(path, v); err != nil {
		return g.errorf(ErrCodeInvalidOption, 0, path, "%v", err)
	}
	g.options = next
	g.logger.Debug().Str("path", path).Msg("option changed")
	return nil
}

// Dispose releases every row, snapshot and handle held by the grid. Later
// mutating calls fail with DISPOSED; reads see an empty grid. Idempotent.
func (g *Grid) Dispose() {
	if g.disposed {
		return
	}
	g.rows = nil
	g.origin = make(map[int64]value.Object)
	g.param = Parameter{}
	g.clearCaches()
	g.dirty = false
	g.disposed = true
	g.logger.Debug().Msg("grid disposed")
}

// Disposed reports whether Dispose was called.
func (g *Grid) Disposed() bool {
	return g.disposed
}

func (g *Grid) checkLive(seq int64, op string) error {
	if g.disposed {
		return g.errorf(ErrCodeDisposed, seq, "", "%s", op)
	}
	return nil
}
