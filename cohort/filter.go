package cohort

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/go-gota/gota/series"
)

// Column names added to the filtered dataset for the ground truth and predicted values.
const (
	ColumnTrueY      = "True Y"
	ColumnPredictedY = "Predicted Y"
)

var ErrNoDataset = errors.New("no dataset to filter")

// Predictor produces point predictions for a dataset.
type Predictor interface {
	Predict(x *dataset.Frame) ([]float64, error)
}

// FilterContext carries the dataset and model state a cohort filter is evaluated against.
type FilterContext struct {
	Model               Predictor
	Dataset             *dataset.Frame
	Features            []string
	CategoricalFeatures []string
	Categories          [][]string
	TrueY               []float64
	PredY               []float64
	TaskType            string
	Classes             []string
}

// Filterer returns the subset of the context dataset matching all filters and composite filters.
type Filterer interface {
	FilterData(fc FilterContext, filters []Filter, compositeFilters []CompositeFilter, includeOriginalColumnsOnly bool) (*dataset.Frame, error)
}

// Executor is the default Filterer evaluating filters with gota series comparisons.
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// FilterData applies the conjunction of filters and composite filters to the context dataset.
// Unless includeOriginalColumnsOnly is set, the result carries the True Y and Predicted Y columns.
func (e *Executor) FilterData(fc FilterContext, filters []Filter, compositeFilters []CompositeFilter, includeOriginalColumnsOnly bool) (*dataset.Frame, error) {
	if fc.Dataset == nil {
		return nil, ErrNoDataset
	}

	predY := fc.PredY
	if predY == nil && fc.Model != nil {
		var err error
		predY, err = fc.Model.Predict(fc.Dataset)
		if err != nil {
			return nil, fmt.Errorf("unable to predict dataset for filtering, %w", err)
		}
	}

	work := fc.Dataset.Copy()
	n := work.Nrow()
	if len(fc.TrueY) == n {
		if err := work.Set(series.New(fc.TrueY, series.Float, ColumnTrueY)); err != nil {
			return nil, err
		}
	}
	if len(predY) == n {
		if err := work.Set(series.New(predY, series.Float, ColumnPredictedY)); err != nil {
			return nil, err
		}
	}

	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	for _, f := range filters {
		m, err := filterMask(work, f)
		if err != nil {
			return nil, err
		}
		and(mask, m)
	}
	for _, c := range compositeFilters {
		m, err := compositeMask(work, c)
		if err != nil {
			return nil, err
		}
		and(mask, m)
	}

	rows := make([]int, 0, n)
	for i, keep := range mask {
		if keep {
			rows = append(rows, i)
		}
	}
	out, err := work.Subset(rows)
	if err != nil {
		return nil, err
	}

	if !includeOriginalColumnsOnly {
		return out, nil
	}
	features := fc.Features
	if len(features) == 0 {
		features = fc.Dataset.Names()
	}
	return out.Select(features...)
}

func compositeMask(f *dataset.Frame, c CompositeFilter) ([]bool, error) {
	if err := c.Valid(); err != nil {
		return nil, err
	}
	if c.Filter != nil {
		return filterMask(f, *c.Filter)
	}

	mask := make([]bool, f.Nrow())
	if c.Operation == OperationAnd {
		for i := range mask {
			mask[i] = true
		}
	}
	for _, sub := range c.CompositeFilters {
		m, err := compositeMask(f, sub)
		if err != nil {
			return nil, err
		}
		switch c.Operation {
		case OperationAnd:
			and(mask, m)
		case OperationOr:
			or(mask, m)
		}
	}
	return mask, nil
}

func filterMask(f *dataset.Frame, flt Filter) ([]bool, error) {
	if err := flt.Valid(); err != nil {
		return nil, err
	}
	s, err := f.Column(flt.Column)
	if err != nil {
		return nil, fmt.Errorf("unable to apply filter, %w", err)
	}

	compare := func(comparator series.Comparator, comparando any) ([]bool, error) {
		res := s.Compare(comparator, comparando)
		if res.Err != nil {
			return nil, fmt.Errorf("unable to compare column %q with %v, %w", flt.Column, comparando, res.Err)
		}
		return res.Bool()
	}

	switch flt.Method {
	case MethodIncludes:
		return compare(series.In, flt.Arg)
	case MethodExcludes:
		m, err := compare(series.In, flt.Arg)
		if err != nil {
			return nil, err
		}
		for i := range m {
			m[i] = !m[i]
		}
		return m, nil
	case MethodEqual:
		return compare(series.Eq, flt.Arg[:1])
	case MethodGreater:
		return compare(series.Greater, flt.Arg[:1])
	case MethodLess:
		return compare(series.Less, flt.Arg[:1])
	case MethodGreaterAndEqual:
		return compare(series.GreaterEq, flt.Arg[:1])
	case MethodLessAndEqual:
		return compare(series.LessEq, flt.Arg[:1])
	case MethodRange:
		lower, err := compare(series.GreaterEq, flt.Arg[:1])
		if err != nil {
			return nil, err
		}
		upper, err := compare(series.LessEq, flt.Arg[1:2])
		if err != nil {
			return nil, err
		}
		and(lower, upper)
		return lower, nil
	}
	return nil, fmt.Errorf("%q, %w", flt.Method, ErrUnknownMethod)
}

func and(dst, src []bool) {
	for i := range dst {
		dst[i] = dst[i] && src[i]
	}
}

func or(dst, src []bool) {
	for i := range dst {
		dst[i] = dst[i] || src[i]
	}
}
