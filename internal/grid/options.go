package grid

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/roach88/wgrid/internal/value"
)

// Options is the merged per-instance configuration.
// Build it with DefaultOptions or MergeOptions; never partially by hand.
type Options struct {
	Style              Style            `json:"style"`
	IsHead             bool             `json:"isHead"`
	IsPaging           bool             `json:"isPaging"`
	IsDblClick         bool             `json:"isDblClick"`
	Empty              Empty            `json:"empty"`
	IsRowStatusColor   bool             `json:"isRowStatusColor"`
	IsRowStatusObserve bool             `json:"isRowStatusObserve"`
	RowStatusObserve   RowStatusObserve `json:"rowStatusObserve"`
	Checkbox           Checkbox         `json:"checkbox"`
}

// Style holds container and row styling options.
type Style struct {
	Width    string   `json:"width"`
	Height   string   `json:"height"`
	Overflow Overflow `json:"overflow"`
	Row      RowStyle `json:"row"`
}

// Overflow holds scrollbar behavior per axis. Nil means unset.
type Overflow struct {
	X *string `json:"x"`
	Y *string `json:"y"`
}

// RowStyle holds row-level styling.
type RowStyle struct {
	Cursor  string `json:"cursor"`
	IsChose bool   `json:"isChose"`
}

// Empty configures the placeholder shown for an empty row set.
type Empty struct {
	Message string `json:"message"`
}

// RowStatusObserve configures automatic repaint on row state changes.
type RowStatusObserve struct {
	IsRowEditMode bool     `json:"isRowEditMode"`
	ExceptList    []string `json:"exceptList"`
}

// Checkbox holds the sentinel values written into a row when a checkbox cell
// is toggled.
type Checkbox struct {
	Check   value.Value `json:"check"`
	Uncheck value.Value `json:"uncheck"`
}

// Excluded reports whether edits to field must not trigger a status repaint.
func (o RowStatusObserve) Excluded(field string) bool {
	for _, name := range o.ExceptList {
		if name == field {
			return true
		}
	}
	return false
}

// Sentinel returns the check or uncheck value.
func (c Checkbox) Sentinel(checked bool) value.Value {
	if checked {
		return c.Check
	}
	return c.Uncheck
}

// DefaultOptions returns the option defaults.
func DefaultOptions() Options {
	return Options{
		Style: Style{
			Width:  "100%",
			Height: "500px",
			Row:    RowStyle{Cursor: "inherit"},
		},
		IsHead:           true,
		Empty:            Empty{Message: "No Data"},
		IsRowStatusColor: true,
		RowStatusObserve: RowStatusObserve{ExceptList: []string{}},
		Checkbox: Checkbox{
			Check:   value.Bool(true),
			Uncheck: value.Bool(false),
		},
	}
}

// PartialOptions is a deeply partial options object as written in option
// files and grid definitions. Nil members keep their defaults.
type PartialOptions struct {
	Style              *PartialStyle            `json:"style,omitempty" yaml:"style,omitempty"`
	IsHead             *bool                    `json:"isHead,omitempty" yaml:"isHead,omitempty"`
	IsPaging           *bool                    `json:"isPaging,omitempty" yaml:"isPaging,omitempty"`
	IsDblClick         *bool                    `json:"isDblClick,omitempty" yaml:"isDblClick,omitempty"`
	Empty              *PartialEmpty            `json:"empty,omitempty" yaml:"empty,omitempty"`
	IsRowStatusColor   *bool                    `json:"isRowStatusColor,omitempty" yaml:"isRowStatusColor,omitempty"`
	IsRowStatusObserve *bool                    `json:"isRowStatusObserve,omitempty" yaml:"isRowStatusObserve,omitempty"`
	RowStatusObserve   *PartialRowStatusObserve `json:"rowStatusObserve,omitempty" yaml:"rowStatusObserve,omitempty"`
	Checkbox           *PartialCheckbox         `json:"checkbox,omitempty" yaml:"checkbox,omitempty"`
}

// PartialStyle is the partial form of Style.
type PartialStyle struct {
	Width    *string          `json:"width,omitempty" yaml:"width,omitempty"`
	Height   *string          `json:"height,omitempty" yaml:"height,omitempty"`
	Overflow *PartialOverflow `json:"overflow,omitempty" yaml:"overflow,omitempty"`
	Row      *PartialRowStyle `json:"row,omitempty" yaml:"row,omitempty"`
}

// PartialOverflow is the partial form of Overflow.
type PartialOverflow struct {
	X *string `json:"x,omitempty" yaml:"x,omitempty"`
	Y *string `json:"y,omitempty" yaml:"y,omitempty"`
}

// PartialRowStyle is the partial form of RowStyle.
type PartialRowStyle struct {
	Cursor  *string `json:"cursor,omitempty" yaml:"cursor,omitempty"`
	IsChose *bool   `json:"isChose,omitempty" yaml:"isChose,omitempty"`
}

// PartialEmpty is the partial form of Empty.
type PartialEmpty struct {
	Message *string `json:"message,omitempty" yaml:"message,omitempty"`
}

// PartialRowStatusObserve is the partial form of RowStatusObserve.
type PartialRowStatusObserve struct {
	IsRowEditMode *bool    `json:"isRowEditMode,omitempty" yaml:"isRowEditMode,omitempty"`
	ExceptList    []string `json:"exceptList,omitempty" yaml:"exceptList,omitempty"`
}

// PartialCheckbox is the partial form of Checkbox.
type PartialCheckbox struct {
	Check   *Literal `json:"check,omitempty" yaml:"check,omitempty"`
	Uncheck *Literal `json:"uncheck,omitempty" yaml:"uncheck,omitempty"`
}

// Literal carries an arbitrary field value through JSON and YAML decoding.
type Literal struct {
	Value value.Value
}

// Lit wraps a value for use in PartialOptions.
func Lit(v value.Value) *Literal {
	return &Literal{Value: v}
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Literal) UnmarshalJSON(data []byte) error {
	v, err := value.Unmarshal(data)
	if err != nil {
		return err
	}
	l.Value = v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Literal) MarshalJSON() ([]byte, error) {
	return value.Marshal(l.Value)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return err
	}
	l.Value = v
	return nil
}

// MergeOptions merges p over the defaults. The result shares nothing with p.
// Enabling isRowStatusObserve forces isRowStatusColor on.
func MergeOptions(p PartialOptions) Options {
	o := DefaultOptions()

	if s := p.Style; s != nil {
		setString(&o.Style.Width, s.Width)
		setString(&o.Style.Height, s.Height)
		if s.Overflow != nil {
			o.Style.Overflow.X = cloneString(s.Overflow.X)
			o.Style.Overflow.Y = cloneString(s.Overflow.Y)
		}
		if s.Row != nil {
			setString(&o.Style.Row.Cursor, s.Row.Cursor)
			setBool(&o.Style.Row.IsChose, s.Row.IsChose)
		}
	}
	setBool(&o.IsHead, p.IsHead)
	setBool(&o.IsPaging, p.IsPaging)
	setBool(&o.IsDblClick, p.IsDblClick)
	if p.Empty != nil {
		setString(&o.Empty.Message, p.Empty.Message)
	}
	setBool(&o.IsRowStatusColor, p.IsRowStatusColor)
	setBool(&o.IsRowStatusObserve, p.IsRowStatusObserve)
	if r := p.RowStatusObserve; r != nil {
		setBool(&o.RowStatusObserve.IsRowEditMode, r.IsRowEditMode)
		if r.ExceptList != nil {
			o.RowStatusObserve.ExceptList = append([]string{}, r.ExceptList...)
		}
	}
	if c := p.Checkbox; c != nil {
		if c.Check != nil {
			o.Checkbox.Check = value.Clone(c.Check.Value)
		}
		if c.Uncheck != nil {
			o.Checkbox.Uncheck = value.Clone(c.Uncheck.Value)
		}
	}

	o.normalize()
	return o
}

func (o *Options) normalize() {
	if o.IsRowStatusObserve {
		o.IsRowStatusColor = true
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// validOverflow lists the accepted scrollbar behaviors.
var validOverflow = []string{"auto", "scroll", "hidden", "visible"}

// Validate checks option values that would only fail later at render time.
func (o Options) Validate() error {
	var errs criterio.FieldErrorsBuilder
	for i, name := range o.RowStatusObserve.ExceptList {
		if strings.TrimSpace(name) == "" {
			errs = errs.Append(fmt.Sprintf("rowStatusObserve.exceptList[%d]", i), fmt.Errorf("field name is empty"))
		}
	}

	return criterio.ValidateStruct(
		criterio.Run("style.width", o.Style.Width, nonEmpty),
		criterio.Run("style.height", o.Style.Height, nonEmpty),
		criterio.Run("style.overflow.x", o.Style.Overflow.X, overflowValue),
		criterio.Run("style.overflow.y", o.Style.Overflow.Y, overflowValue),
		criterio.Run("empty.message", o.Empty.Message, nonEmpty),
		errs.ToError(),
	)
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func overflowValue(s *string) error {
	if s == nil {
		return nil
	}
	for _, v := range validOverflow {
		if *s == v {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v, got %q", validOverflow, *s)
}

// Option paths accepted by ChangeOption.
const (
	OptStyleWidth                    = "style.width"
	OptStyleHeight                   = "style.height"
	OptStyleOverflowX                = "style.overflow.x"
	OptStyleOverflowY                = "style.overflow.y"
	OptStyleRowCursor                = "style.row.cursor"
	OptStyleRowIsChose               = "style.row.isChose"
	OptIsHead                        = "isHead"
	OptIsPaging                      = "isPaging"
	OptIsDblClick                    = "isDblClick"
	OptEmptyMessage                  = "empty.message"
	OptIsRowStatusColor              = "isRowStatusColor"
	OptIsRowStatusObserve            = "isRowStatusObserve"
	OptRowStatusObserveIsRowEditMode = "rowStatusObserve.isRowEditMode"
	OptRowStatusObserveExceptList    = "rowStatusObserve.exceptList"
	OptCheckboxCheck                 = "checkbox.check"
	OptCheckboxUncheck               = "checkbox.uncheck"
)

// OptionPaths lists every path ChangeOption accepts, in table order.
var OptionPaths = []string{
	OptStyleWidth, OptStyleHeight, OptStyleOverflowX, OptStyleOverflowY,
	OptStyleRowCursor, OptStyleRowIsChose, OptIsHead, OptIsPaging, OptIsDblClick,
	OptEmptyMessage, OptIsRowStatusColor, OptIsRowStatusObserve,
	OptRowStatusObserveIsRowEditMode, OptRowStatusObserveExceptList,
	OptCheckboxCheck, OptCheckboxUncheck,
}

// applyOption writes one option by dotted path. A leading "option." is
// accepted. The value must have the option's type; overflow axes also accept
// nil, checkbox sentinels accept anything value.FromAny understands.
func (o *Options) applyOption(path string, v any) error {
	path = strings.TrimPrefix(path, "option.")

	var err error
	switch path {
	case OptStyleWidth:
		err = assign(&o.Style.Width, v)
	case OptStyleHeight:
		err = assign(&o.Style.Height, v)
	case OptStyleOverflowX:
		o.Style.Overflow.X, err = optionalString(v)
	case OptStyleOverflowY:
		o.Style.Overflow.Y, err = optionalString(v)
	case OptStyleRowCursor:
		err = assign(&o.Style.Row.Cursor, v)
	case OptStyleRowIsChose:
		err = assign(&o.Style.Row.IsChose, v)
	case OptIsHead:
		err = assign(&o.IsHead, v)
	case OptIsPaging:
		err = assign(&o.IsPaging, v)
	case OptIsDblClick:
		err = assign(&o.IsDblClick, v)
	case OptEmptyMessage:
		err = assign(&o.Empty.Message, v)
	case OptIsRowStatusColor:
		err = assign(&o.IsRowStatusColor, v)
	case OptIsRowStatusObserve:
		err = assign(&o.IsRowStatusObserve, v)
	case OptRowStatusObserveIsRowEditMode:
		err = assign(&o.RowStatusObserve.IsRowEditMode, v)
	case OptRowStatusObserveExceptList:
		var list []string
		list, err = stringList(v)
		if err == nil {
			o.RowStatusObserve.ExceptList = list
		}
	case OptCheckboxCheck:
		o.Checkbox.Check, err = sentinel(v, o.Checkbox.Check)
	case OptCheckboxUncheck:
		o.Checkbox.Uncheck, err = sentinel(v, o.Checkbox.Uncheck)
	default:
		return fmt.Errorf("unknown option path %q", path)
	}
	if err != nil {
		return fmt.Errorf("option %q: %w", path, err)
	}

	o.normalize()
	return nil
}

func assign[T any](dst *T, v any) error {
	t, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("want %T, got %T", zero, v)
	}
	*dst = t
	return nil
}

func optionalString(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case *string:
		return cloneString(s), nil
	default:
		return nil, fmt.Errorf("want string or nil, got %T", v)
	}
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("[%d]: want string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want []string, got %T", v)
	}
}

func sentinel(v any, prev value.Value) (value.Value, error) {
	conv, err := value.FromAny(v)
	if err != nil {
		return prev, err
	}
	return value.Clone(conv), nil
}

// MarshalJSON lets Options print checkbox sentinels as plain JSON.
func (c Checkbox) MarshalJSON() ([]byte, error) {
	check, err := value.Marshal(c.Check)
	if err != nil {
		return nil, err
	}
	uncheck, err := value.Marshal(c.Uncheck)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{
		"check":   check,
		"uncheck": uncheck,
	})
}
