package insights

import (
	"github.com/aouyang1/go-forecast-insights/cohort"
	"github.com/aouyang1/go-forecast-insights/dataset"
)

// GetFilteredTestData returns the test rows matching all filters and composite filters. Unless
// includeOriginalColumnsOnly is set the result also holds the true and predicted values.
func (in *Insights) GetFilteredTestData(filters []cohort.Filter, compositeFilters []cohort.CompositeFilter, includeOriginalColumnsOnly bool) (*dataset.Frame, error) {
	if in == nil {
		return nil, ErrUninitializedInsights
	}

	trueY := in.PredictOutput()
	if in.isTrueYPresent {
		var err error
		trueY, err = in.test.Floats(in.targetColumn)
		if err != nil {
			return nil, err
		}
	}

	var categories [][]string
	if in.categorical != nil {
		categories = in.categorical.Categories
	}

	fc := cohort.FilterContext{
		Model:               in.model,
		Dataset:             in.testWithoutTrueY,
		Features:            in.testWithoutTrueY.Names(),
		CategoricalFeatures: in.featureMetadata.CategoricalFeatures,
		Categories:          categories,
		TrueY:               trueY,
		PredY:               in.PredictOutput(),
		TaskType:            in.taskType,
		Classes:             in.Classes(),
	}
	return in.opt.Filterer.FilterData(fc, filters, compositeFilters, includeOriginalColumnsOnly)
}
