package insights

import (
	"fmt"
	"math"
	"slices"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"gonum.org/v1/gonum/floats"
)

const (
	RangeTypeCategorical = "categorical"
	RangeTypeDatetime    = "datetime"
	RangeTypeInteger     = "integer"
)

// FeatureRange describes the values of a feature column. Categorical columns carry their distinct
// values while datetime and numeric columns carry their bounds.
type FeatureRange struct {
	ColumnName   string `json:"column_name"`
	RangeType    string `json:"range_type"`
	UniqueValues []any  `json:"unique_values,omitempty"`
	MinValue     any    `json:"min_value,omitempty"`
	MaxValue     any    `json:"max_value,omitempty"`
}

// SummarizeFeatureRanges returns one range per feature column in featureColumns order.
func SummarizeFeatureRanges(test *dataset.Frame, categoricalFeatures, featureColumns []string, timeColumnName string) ([]FeatureRange, error) {
	ranges := make([]FeatureRange, 0, len(featureColumns))
	for _, col := range featureColumns {
		var fr FeatureRange
		var err error
		switch {
		case slices.Contains(categoricalFeatures, col):
			fr, err = categoricalRange(test, col)
		case col != "" && col == timeColumnName:
			fr, err = datetimeRange(test, col)
		default:
			fr, err = numericRange(test, col)
		}
		if err != nil {
			return nil, fmt.Errorf("unable to summarize range of %q, %w", col, err)
		}
		ranges = append(ranges, fr)
	}
	return ranges, nil
}

func categoricalRange(test *dataset.Frame, col string) (FeatureRange, error) {
	uniq, err := test.Unique(col)
	if err != nil {
		return FeatureRange{}, err
	}
	// numbers are stored as float64 to match their decoded json form
	for i, v := range uniq {
		if iv, ok := v.(int); ok {
			uniq[i] = float64(iv)
		}
	}
	return FeatureRange{
		ColumnName:   col,
		RangeType:    RangeTypeCategorical,
		UniqueValues: uniq,
	}, nil
}

func datetimeRange(test *dataset.Frame, col string) (FeatureRange, error) {
	fr := FeatureRange{ColumnName: col, RangeType: RangeTypeDatetime}
	if test.IsNumeric(col) {
		minV, maxV, err := floatBounds(test, col)
		if err != nil {
			return FeatureRange{}, err
		}
		fr.MinValue, fr.MaxValue = minV, maxV
		return fr, nil
	}

	vals, err := test.Values(col)
	if err != nil {
		return FeatureRange{}, err
	}
	var strs []string
	for _, v := range vals {
		if v == nil {
			continue
		}
		strs = append(strs, dataset.FormatValue(v))
	}
	if len(strs) > 0 {
		fr.MinValue, fr.MaxValue = slices.Min(strs), slices.Max(strs)
	}
	return fr, nil
}

func numericRange(test *dataset.Frame, col string) (FeatureRange, error) {
	minV, maxV, err := floatBounds(test, col)
	if err != nil {
		return FeatureRange{}, err
	}
	return FeatureRange{
		ColumnName: col,
		RangeType:  RangeTypeInteger,
		MinValue:   minV,
		MaxValue:   maxV,
	}, nil
}

// floatBounds returns the bounds of the column ignoring NaN or nil when no value remains.
func floatBounds(test *dataset.Frame, col string) (any, any, error) {
	vals, err := test.Floats(col)
	if err != nil {
		return nil, nil, err
	}
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil, nil, nil
	}
	return floats.Min(clean), floats.Max(clean), nil
}
