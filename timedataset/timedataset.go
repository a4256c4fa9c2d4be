// Package timedataset holds univariate time series extracted from a dataset along with helpers to
// parse time column values.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrUnparsableTime     = errors.New("unable to parse time value")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from less than two points")
)

// layouts accepted when parsing time column values, tried in order
var layouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
}

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a strictly increasing time
// slice and its values.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	return &TimeDataset{
		T: slices.Clone(t),
		Y: slices.Clone(y),
	}, nil
}

// NewSortedDataset orders the points by time before building the dataset.
func NewSortedDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}
	idx := make([]int, len(t))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return t[a].Compare(t[b])
	})

	st := make([]time.Time, len(t))
	sy := make([]float64, len(y))
	for i, j := range idx {
		st[i] = t[j]
		sy[i] = y[j]
	}
	return NewUnivariateDataset(st, sy)
}

func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	return &TimeDataset{
		T: slices.Clone(td.T),
		Y: slices.Clone(td.Y),
	}
}

// DropNan returns a copy of the dataset without the points holding a NaN value.
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	for i, v := range td.Y {
		if math.IsNaN(v) {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, v)
	}
	return res
}

// Mean of the values.
func (td *TimeDataset) Mean() float64 {
	if td == nil || len(td.Y) == 0 {
		return math.NaN()
	}
	return floats.Sum(td.Y) / float64(len(td.Y))
}

// StartTime returns the first time point or the zero time for an empty slice.
func StartTime(t []time.Time) time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[0]
}

// EndTime returns the last time point or the zero time for an empty slice.
func EndTime(t []time.Time) time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common delta between consecutive time points preferring the
// smallest delta on ties.
func EstimateFreq(t []time.Time) (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		frequencies[t[i].Sub(t[i-1])]++
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)
	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// ParseTime converts a time column value into a UTC time. Strings may be a date, an RFC3339
// timestamp or a date and time separated by a space. Numbers are read as unix seconds.
func ParseTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case int:
		return time.Unix(int64(val), 0).UTC(), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return time.Time{}, fmt.Errorf("%v, %w", val, ErrUnparsableTime)
		}
		sec, frac := math.Modf(val)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%q, %w", val, ErrUnparsableTime)
	}
	return time.Time{}, fmt.Errorf("%v of type %T, %w", v, v, ErrUnparsableTime)
}

// ParseTimes converts every value with ParseTime.
func ParseTimes(vals []any) ([]time.Time, error) {
	res := make([]time.Time, len(vals))
	for i, v := range vals {
		t, err := ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse time at row %d, %w", i, err)
		}
		res[i] = t
	}
	return res, nil
}
