// Package dataset provides the tabular Frame used as train and test input. A Frame is an ordered
// set of named columns backed by a gota DataFrame with an optional row index of string labels.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrUninitializedFrame = errors.New("uninitialized frame")
	ErrUnknownColumn      = errors.New("column does not exist in frame")
	ErrIndexLenMismatch   = errors.New("index has a different length than the number of rows")
	ErrUnorderableValues  = errors.New("column holds missing values mixed with values")
	ErrRowOutOfBounds     = errors.New("row is out of bounds")
)

// Frame is an ordered table of named columns where each row is an observation.
type Frame struct {
	df    dataframe.DataFrame
	index []string
}

// New creates a Frame from the input series. Every series must be named and of the same length.
func New(cols ...series.Series) (*Frame, error) {
	for i, col := range cols {
		if col.Err != nil {
			return nil, fmt.Errorf("invalid series at column %d, %w", i, col.Err)
		}
	}
	return FromDataFrame(dataframe.New(cols...))
}

// FromDataFrame wraps an existing gota DataFrame.
func FromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("unable to create frame, %w", df.Err)
	}
	return &Frame{df: df}, nil
}

// WithIndex returns a copy of the frame using the provided row labels as its index.
func (f *Frame) WithIndex(index []string) (*Frame, error) {
	if f == nil {
		return nil, ErrUninitializedFrame
	}
	if index != nil && len(index) != f.Nrow() {
		return nil, fmt.Errorf("index has length %d, but frame has %d rows, %w", len(index), f.Nrow(), ErrIndexLenMismatch)
	}
	return &Frame{df: f.df.Copy(), index: slices.Clone(index)}, nil
}

// DataFrame returns a copy of the underlying gota DataFrame.
func (f *Frame) DataFrame() dataframe.DataFrame {
	if f == nil {
		return dataframe.DataFrame{Err: ErrUninitializedFrame}
	}
	return f.df.Copy()
}

func (f *Frame) Names() []string {
	if f == nil {
		return nil
	}
	return f.df.Names()
}

func (f *Frame) Nrow() int {
	if f == nil {
		return 0
	}
	return f.df.Nrow()
}

func (f *Frame) Ncol() int {
	if f == nil {
		return 0
	}
	return f.df.Ncol()
}

// Has reports whether the frame holds the named column.
func (f *Frame) Has(col string) bool {
	return slices.Contains(f.Names(), col)
}

// HasIndex reports whether explicit row labels were attached to the frame.
func (f *Frame) HasIndex() bool {
	return f != nil && f.index != nil
}

// Index returns a copy of the row labels or nil when none were attached.
func (f *Frame) Index() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.index)
}

// Column returns the named column.
func (f *Frame) Column(col string) (series.Series, error) {
	if f == nil {
		return series.Series{}, ErrUninitializedFrame
	}
	if !f.Has(col) {
		return series.Series{}, fmt.Errorf("%q, %w", col, ErrUnknownColumn)
	}
	return f.df.Col(col), nil
}

// Kind returns the element type of the named column.
func (f *Frame) Kind(col string) (series.Type, error) {
	s, err := f.Column(col)
	if err != nil {
		return "", err
	}
	return s.Type(), nil
}

// IsNumeric reports whether the named column holds integer or floating point values.
func (f *Frame) IsNumeric(col string) bool {
	kind, err := f.Kind(col)
	if err != nil {
		return false
	}
	return kind == series.Int || kind == series.Float
}

// Floats returns the named column as floating point values. Missing or non numeric elements
// are returned as NaN.
func (f *Frame) Floats(col string) ([]float64, error) {
	s, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	return s.Float(), nil
}

// Strings returns the string records of the named column.
func (f *Frame) Strings(col string) ([]string, error) {
	s, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// Values returns the named column as native values where string, int, float64 and bool
// elements are kept as such and missing elements are nil.
func (f *Frame) Values(col string) ([]any, error) {
	s, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	vals := make([]any, s.Len())
	for i := 0; i < s.Len(); i++ {
		vals[i] = elemValue(s.Elem(i))
	}
	return vals, nil
}

// Unique returns the distinct values of the named column in order of first appearance. String
// columns holding missing values cannot be ordered and return ErrUnorderableValues.
func (f *Frame) Unique(col string) ([]any, error) {
	s, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.String && s.HasNaN() {
		return nil, fmt.Errorf("%q, %w", col, ErrUnorderableValues)
	}

	seen := make(map[any]struct{})
	var uniq []any
	for i := 0; i < s.Len(); i++ {
		v := elemValue(s.Elem(i))
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq, nil
}

// Rows returns the frame as a slice of rows in column order.
func (f *Frame) Rows() ([][]any, error) {
	if f == nil {
		return nil, ErrUninitializedFrame
	}
	names := f.Names()
	cols := make([][]any, len(names))
	for j, name := range names {
		vals, err := f.Values(name)
		if err != nil {
			return nil, err
		}
		cols[j] = vals
	}

	rows := make([][]any, f.Nrow())
	for i := range rows {
		row := make([]any, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows, nil
}

// Drop returns a copy of the frame without the named columns.
func (f *Frame) Drop(cols ...string) (*Frame, error) {
	if f == nil {
		return nil, ErrUninitializedFrame
	}
	for _, col := range cols {
		if !f.Has(col) {
			return nil, fmt.Errorf("unable to drop %q, %w", col, ErrUnknownColumn)
		}
	}
	df := f.df.Drop(cols)
	if df.Err != nil {
		return nil, fmt.Errorf("unable to drop columns %v, %w", cols, df.Err)
	}
	return &Frame{df: df, index: slices.Clone(f.index)}, nil
}

// Select returns a copy of the frame with only the named columns in the given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	if f == nil {
		return nil, ErrUninitializedFrame
	}
	for _, col := range cols {
		if !f.Has(col) {
			return nil, fmt.Errorf("unable to select %q, %w", col, ErrUnknownColumn)
		}
	}
	df := f.df.Select(cols)
	if df.Err != nil {
		return nil, fmt.Errorf("unable to select columns %v, %w", cols, df.Err)
	}
	return &Frame{df: df, index: slices.Clone(f.index)}, nil
}

// Subset returns a copy of the frame with only the rows at the given positions.
func (f *Frame) Subset(rows []int) (*Frame, error) {
	if f == nil {
		return nil, ErrUninitializedFrame
	}
	n := f.Nrow()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row %d of %d, %w", r, n, ErrRowOutOfBounds)
		}
	}
	df := f.df.Subset(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("unable to subset rows, %w", df.Err)
	}

	var index []string
	if f.index != nil {
		index = make([]string, 0, len(rows))
		for _, r := range rows {
			index = append(index, f.index[r])
		}
	}
	return &Frame{df: df, index: index}, nil
}

// Head returns the first n rows of the frame.
func (f *Frame) Head(n int) (*Frame, error) {
	n = min(n, f.Nrow())
	rows := make([]int, n)
	for i := range n {
		rows[i] = i
	}
	return f.Subset(rows)
}

// Set adds the series as a column or replaces the column of the same name in place.
func (f *Frame) Set(s series.Series) error {
	if f == nil {
		return ErrUninitializedFrame
	}
	if s.Len() != f.Nrow() {
		return fmt.Errorf("series %q has length %d, but frame has %d rows, %w", s.Name, s.Len(), f.Nrow(), ErrIndexLenMismatch)
	}
	df := f.df.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("unable to set column %q, %w", s.Name, df.Err)
	}
	f.df = df
	return nil
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	if f == nil {
		return nil
	}
	return &Frame{df: f.df.Copy(), index: slices.Clone(f.index)}
}

func elemValue(e series.Element) any {
	if e.IsNA() {
		return nil
	}
	v := e.Val()
	if fv, ok := v.(float64); ok && math.IsNaN(fv) {
		return nil
	}
	return v
}

// FormatValue returns the string form of a native column value. Missing values are "NaN".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NaN"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
