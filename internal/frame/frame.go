// Package frame is the small columnar table the calculators read their input
// from and write their results to. Columns are either numeric or text; a
// missing numeric value is NaN and a missing text value is "".
package frame

import (
	"math"
	"strconv"

	"phstats/internal/errors"
)

// Kind is the type of values held by a Column
type Kind int

const (
	Float Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "float"
}

// Column is one named, typed column. Only the slice matching Kind is used.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// FloatColumn creates a numeric column
func FloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Float, Floats: values}
}

// TextColumn creates a text column
func TextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: Text, Strings: values}
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	if c.Kind == Text {
		return len(c.Strings)
	}
	return len(c.Floats)
}

// IsMissing reports whether row i holds no value
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Text {
		return c.Strings[i] == ""
	}
	return math.IsNaN(c.Floats[i])
}

// Format renders row i as text. Missing numbers render as "".
func (c *Column) Format(i int) string {
	if c.Kind == Text {
		return c.Strings[i]
	}
	return FormatFloat(c.Floats[i])
}

// FormatFloat renders a number the way the frame writes it out
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Text {
		out.Strings = make([]string, len(rows))
		for i, r := range rows {
			if r < 0 {
				continue
			}
			out.Strings[i] = c.Strings[r]
		}
		return out
	}
	out.Floats = make([]float64, len(rows))
	for i, r := range rows {
		if r < 0 {
			out.Floats[i] = math.NaN()
			continue
		}
		out.Floats[i] = c.Floats[r]
	}
	return out
}

// Frame is an ordered set of equal length columns
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a frame from columns, which must have equal lengths and
// unique names.
func New(columns ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int)}
	for _, c := range columns {
		if _, exists := f.index[c.Name]; exists {
			return nil, errors.Newf(errors.CodeValidationError, "duplicate column %q", c.Name)
		}
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddColumn appends a column, replacing any existing column of the same name
// in place. The first column added fixes the row count.
func (f *Frame) AddColumn(c *Column) error {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if len(f.columns) > 0 && c.Len() != f.rows {
		return errors.Newf(errors.CodeValidationError,
			"column %q has %d rows, expected %d", c.Name, c.Len(), f.rows)
	}
	if len(f.columns) == 0 {
		f.rows = c.Len()
	}
	if i, exists := f.index[c.Name]; exists {
		f.columns[i] = c
		return nil
	}
	f.index[c.Name] = len(f.columns)
	f.columns = append(f.columns, c)
	return nil
}

// AddFloat appends or replaces a numeric column
func (f *Frame) AddFloat(name string, values []float64) error {
	return f.AddColumn(FloatColumn(name, values))
}

// AddText appends or replaces a text column
func (f *Frame) AddText(name string, values []string) error {
	return f.AddColumn(TextColumn(name, values))
}

// RowCount returns the number of rows
func (f *Frame) RowCount() int {
	return f.rows
}

// ColumnCount returns the number of columns
func (f *Frame) ColumnCount() int {
	return len(f.columns)
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Floats returns the values of a numeric column
func (f *Frame) Floats(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, errors.NotFound("column " + strconv.Quote(name))
	}
	if c.Kind != Float {
		return nil, errors.Newf(errors.CodeValidationError, "column %q must be numeric", name)
	}
	return c.Floats, nil
}

// Strings returns the values of any column rendered as text
func (f *Frame) Strings(name string) ([]string, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, errors.NotFound("column " + strconv.Quote(name))
	}
	if c.Kind == Text {
		return c.Strings, nil
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Format(i)
	}
	return out, nil
}

// Take returns a new frame holding the given rows in order. A negative index
// yields a missing row.
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.columns)), rows: len(rows)}
	for _, c := range f.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.take(rows))
	}
	return out
}

// Select returns a frame with only the named columns, in the given order
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{index: make(map[string]int, len(names)), rows: f.rows}
	for _, name := range names {
		c, ok := f.Column(name)
		if !ok {
			return nil, errors.NotFound("column " + strconv.Quote(name))
		}
		if _, dup := out.index[name]; dup {
			continue
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out, nil
}

// Drop returns a frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(f.columns))
	for _, c := range f.columns {
		if !drop[c.Name] {
			keep = append(keep, c.Name)
		}
	}
	out, _ := f.Select(keep...)
	return out
}
