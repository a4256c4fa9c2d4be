package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"
)

var ErrUnknownKind = errors.New("unknown column kind")

// Record is the serializeable format of a Frame. Values are stored as gota string records so
// missing elements survive a round trip as "NaN".
type Record struct {
	Columns []ColumnRecord `json:"columns"`
	Index   []string       `json:"index"`
}

// ColumnRecord stores a single named column and its element type.
type ColumnRecord struct {
	Name   string      `json:"name"`
	Kind   series.Type `json:"kind"`
	Values []string    `json:"values"`
}

// Record returns the serializeable format of the frame.
func (f *Frame) Record() (Record, error) {
	if f == nil {
		return Record{}, ErrUninitializedFrame
	}
	names := f.Names()
	cols := make([]ColumnRecord, 0, len(names))
	for _, name := range names {
		s := f.df.Col(name)
		cols = append(cols, ColumnRecord{
			Name:   name,
			Kind:   s.Type(),
			Values: records(s),
		})
	}
	return Record{Columns: cols, Index: f.Index()}, nil
}

// records formats floats at full precision since gota truncates them to six decimals.
func records(s series.Series) []string {
	if s.Type() != series.Float {
		return s.Records()
	}
	vals := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			vals[i] = "NaN"
			continue
		}
		vals[i] = strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return vals
}

// NewFromRecord rebuilds a frame from its serializeable format.
func NewFromRecord(r Record) (*Frame, error) {
	cols := make([]series.Series, 0, len(r.Columns))
	for _, c := range r.Columns {
		switch c.Kind {
		case series.String, series.Int, series.Float, series.Bool:
		default:
			return nil, fmt.Errorf("%q for column %q, %w", c.Kind, c.Name, ErrUnknownKind)
		}
		cols = append(cols, series.New(c.Values, c.Kind, c.Name))
	}
	f, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if r.Index == nil {
		return f, nil
	}
	return f.WithIndex(r.Index)
}

// WriteJSON writes the frame record to the given path.
func WriteJSON(path string, f *Frame) error {
	r, err := f.Record()
	if err != nil {
		return err
	}
	bytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("unable to marshal frame, %w", err)
	}
	return os.WriteFile(path, bytes, 0o644)
}

// ReadJSON reads a frame record written by WriteJSON.
func ReadJSON(path string) (*Frame, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(bytes, &r); err != nil {
		return nil, fmt.Errorf("unable to unmarshal frame from %s, %w", path, err)
	}
	return NewFromRecord(r)
}

// ReadCSV loads a frame from CSV with a header row. Column types are detected unless
// overridden through kinds, e.g. to keep numeric looking identifiers as strings.
func ReadCSV(r io.Reader, kinds map[string]series.Type) (*Frame, error) {
	opts := []dataframe.LoadOption{dataframe.HasHeader(true), dataframe.DetectTypes(true)}
	if len(kinds) > 0 {
		opts = append(opts, dataframe.WithTypes(kinds))
	}
	return FromDataFrame(dataframe.ReadCSV(r, opts...))
}
