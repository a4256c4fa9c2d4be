package cohort

import (
	"errors"
	"testing"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValid(t *testing.T) {
	testData := map[string]struct {
		filter Filter
		err    error
	}{
		"unknown method":     {Filter{Method: "like", Arg: []string{"a"}, Column: "c"}, ErrUnknownMethod},
		"includes no values": {Filter{Method: MethodIncludes, Column: "c"}, ErrInvalidArg},
		"range single value": {Filter{Method: MethodRange, Arg: []string{"1"}, Column: "c"}, ErrInvalidArg},
		"equal two values":   {Filter{Method: MethodEqual, Arg: []string{"1", "2"}, Column: "c"}, ErrInvalidArg},
		"valid includes":     {Filter{Method: MethodIncludes, Arg: []string{"a", "b"}, Column: "c"}, nil},
		"valid range":        {Filter{Method: MethodRange, Arg: []string{"1", "2"}, Column: "c"}, nil},
		"valid greater":      {Filter{Method: MethodGreater, Arg: []string{"1"}, Column: "c"}, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.filter.Valid()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestCohortAddFilter(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrNoName)

	c, err := New("store_id = 1")
	require.Nil(t, err)

	f, err := NewFilter(MethodIncludes, []string{"1"}, "store_id")
	require.Nil(t, err)
	require.Nil(t, c.AddFilter(f))

	err = c.AddFilter(Filter{Method: "nope", Column: "store_id"})
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Equal(t, []Filter{f}, c.Filters)
}

type constPredictor struct {
	val float64
	err error
}

func (c constPredictor) Predict(x *dataset.Frame) ([]float64, error) {
	if c.err != nil {
		return nil, c.err
	}
	res := make([]float64, x.Nrow())
	for i := range res {
		res[i] = c.val
	}
	return res, nil
}

func setupFilterContext(t *testing.T) FilterContext {
	t.Helper()
	f, err := dataset.New(
		series.New([]string{"2024-01-01", "2024-01-02", "2024-01-01", "2024-01-02"}, series.String, "date"),
		series.New([]int{1, 1, 2, 2}, series.Int, "store_id"),
		series.New([]float64{0.5, 1.5, 2.5, 3.5}, series.Float, "price"),
	)
	require.Nil(t, err)
	return FilterContext{
		Model:    constPredictor{val: 7},
		Dataset:  f,
		Features: f.Names(),
		TrueY:    []float64{10, 11, 20, 21},
		TaskType: "forecasting",
	}
}

func TestExecutorFilterData(t *testing.T) {
	testData := map[string]struct {
		filters   []Filter
		composite []CompositeFilter
		original  bool
		expected  [][]any
		err       error
	}{
		"no filters": {
			original: true,
			expected: [][]any{
				{"2024-01-01", 1, 0.5},
				{"2024-01-02", 1, 1.5},
				{"2024-01-01", 2, 2.5},
				{"2024-01-02", 2, 3.5},
			},
		},
		"includes string arg on int column": {
			filters:  []Filter{{Method: MethodIncludes, Arg: []string{"2"}, Column: "store_id"}},
			original: true,
			expected: [][]any{
				{"2024-01-01", 2, 2.5},
				{"2024-01-02", 2, 3.5},
			},
		},
		"excludes": {
			filters:  []Filter{{Method: MethodExcludes, Arg: []string{"2024-01-01"}, Column: "date"}},
			original: true,
			expected: [][]any{
				{"2024-01-02", 1, 1.5},
				{"2024-01-02", 2, 3.5},
			},
		},
		"conjunction of filters": {
			filters: []Filter{
				{Method: MethodIncludes, Arg: []string{"1"}, Column: "store_id"},
				{Method: MethodIncludes, Arg: []string{"2024-01-02"}, Column: "date"},
			},
			original: true,
			expected: [][]any{
				{"2024-01-02", 1, 1.5},
			},
		},
		"range": {
			filters:  []Filter{{Method: MethodRange, Arg: []string{"1", "3"}, Column: "price"}},
			original: true,
			expected: [][]any{
				{"2024-01-02", 1, 1.5},
				{"2024-01-01", 2, 2.5},
			},
		},
		"composite or": {
			composite: []CompositeFilter{
				{
					Operation: OperationOr,
					CompositeFilters: []CompositeFilter{
						{Filter: &Filter{Method: MethodLess, Arg: []string{"1"}, Column: "price"}},
						{Filter: &Filter{Method: MethodGreater, Arg: []string{"3"}, Column: "price"}},
					},
				},
			},
			original: true,
			expected: [][]any{
				{"2024-01-01", 1, 0.5},
				{"2024-01-02", 2, 3.5},
			},
		},
		"with true and predicted columns": {
			filters: []Filter{{Method: MethodEqual, Arg: []string{"20"}, Column: ColumnTrueY}},
			expected: [][]any{
				{"2024-01-01", 2, 2.5, 20.0, 7.0},
			},
		},
		"unknown column": {
			filters: []Filter{{Method: MethodEqual, Arg: []string{"1"}, Column: "region"}},
			err:     dataset.ErrUnknownColumn,
		},
		"unknown operation": {
			composite: []CompositeFilter{{Operation: "xor"}},
			err:       ErrUnknownOperation,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fc := setupFilterContext(t)
			res, err := NewExecutor().FilterData(fc, td.filters, td.composite, td.original)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			rows, err := res.Rows()
			require.Nil(t, err)
			assert.Equal(t, td.expected, rows)
		})
	}
}

func TestExecutorPredictError(t *testing.T) {
	fc := setupFilterContext(t)
	errPredict := errors.New("predict failed")
	fc.Model = constPredictor{err: errPredict}

	_, err := NewExecutor().FilterData(fc, nil, nil, true)
	assert.ErrorIs(t, err, errPredict)

	_, err = NewExecutor().FilterData(FilterContext{}, nil, nil, true)
	assert.ErrorIs(t, err, ErrNoDataset)
}
