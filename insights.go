// Package insights validates a forecasting model against its train and test datasets and derives
// the artifacts a responsible AI dashboard needs: feature ranges, categorical encodings, cached
// predictions and per time series cohorts. Insights can be saved to and restored from a
// directory.
package insights

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aouyang1/go-forecast-insights/categorical"
	"github.com/aouyang1/go-forecast-insights/cohort"
	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
)

const TaskTypeForecasting = "forecasting"

// Insights holds a forecasting model, its datasets and the state derived from them. All derived
// state is computed once at construction or restored from a snapshot.
type Insights struct {
	opt    *Options
	logger *slog.Logger

	model        models.Forecaster
	serializer   models.Serializer
	train        *dataset.Frame
	test         *dataset.Frame
	targetColumn string
	taskType     string
	classes      []string

	isTrueYPresent   bool
	testWithoutTrueY *dataset.Frame
	featureColumns   []string
	featureMetadata  *metadata.FeatureMetadata
	featureRanges    []FeatureRange
	categorical      *categorical.Result
	predictions      Predictions
	timeSeries       []*cohort.Cohort
}

// New validates the model and datasets and computes the derived state. A nil model is allowed
// and results in no predictions. The feature metadata of the options is copied before the time
// column is resolved.
func New(model models.Forecaster, train, test *dataset.Frame, targetColumn string, opt *Options) (*Insights, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	fm := opt.FeatureMetadata
	metadataProvided := fm != nil
	if fm == nil {
		fm = &metadata.FeatureMetadata{}
	}
	isTrueYPresent := test != nil && test.Has(targetColumn)

	err = validateInputs(validationInput{
		model:              model,
		train:              train,
		test:               test,
		targetColumn:       targetColumn,
		serializer:         opt.Serializer,
		maximumRowsForTest: opt.MaximumRowsForTest,
		featureMetadata:    fm,
		metadataProvided:   metadataProvided,
		isTrueYPresent:     isTrueYPresent,
		logger:             opt.Logger,
	})
	if err != nil {
		return nil, err
	}

	in := &Insights{
		opt:             opt,
		logger:          opt.Logger,
		model:           model,
		serializer:      opt.Serializer,
		train:           train,
		test:            test,
		targetColumn:    targetColumn,
		taskType:        TaskTypeForecasting,
		isTrueYPresent:  isTrueYPresent,
		featureMetadata: fm,
	}

	in.testWithoutTrueY = test
	if isTrueYPresent {
		if in.testWithoutTrueY, err = test.Drop(targetColumn); err != nil {
			return nil, fmt.Errorf("unable to drop target column from test data, %w", err)
		}
	}
	in.featureColumns = in.testWithoutTrueY.Names()

	in.featureRanges, err = SummarizeFeatureRanges(test, fm.CategoricalFeatures, in.featureColumns, fm.TimeColumnName)
	if err != nil {
		return nil, err
	}
	if err := in.processCategoricals(); err != nil {
		return nil, err
	}

	in.predictions, err = predictTest(model, in.testWithoutTrueY, opt.QuantilePolicy)
	if err != nil {
		return nil, err
	}

	in.timeSeries, err = GenerateTimeSeriesCohorts(test, fm.TimeSeriesIDColumnNames)
	if err != nil {
		return nil, err
	}

	in.logger.Debug("created insights",
		"target_column", targetColumn,
		"test_rows", test.Nrow(),
		"feature_columns", len(in.featureColumns),
		"time_series", len(in.timeSeries),
	)
	return in, nil
}

func (in *Insights) processCategoricals() error {
	res, err := in.opt.CategoricalProcessor.Process(in.featureColumns, in.featureMetadata.CategoricalFeatures, in.testWithoutTrueY)
	if err != nil {
		return fmt.Errorf("unable to process categorical features, %w", err)
	}
	in.categorical = res
	return nil
}

func (in *Insights) Model() models.Forecaster {
	if in == nil {
		return nil
	}
	return in.model
}

func (in *Insights) Train() *dataset.Frame {
	if in == nil {
		return nil
	}
	return in.train
}

func (in *Insights) Test() *dataset.Frame {
	if in == nil {
		return nil
	}
	return in.test
}

func (in *Insights) TargetColumn() string {
	if in == nil {
		return ""
	}
	return in.targetColumn
}

func (in *Insights) TaskType() string {
	if in == nil {
		return ""
	}
	return in.taskType
}

// Classes is always empty for forecasting.
func (in *Insights) Classes() []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in.classes)
}

// IsTrueYPresent reports whether the test dataset holds the target column.
func (in *Insights) IsTrueYPresent() bool {
	return in != nil && in.isTrueYPresent
}

// FeatureColumns are the test dataset columns without the target column.
func (in *Insights) FeatureColumns() []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in.featureColumns)
}

// FeatureMetadata returns a copy of the resolved feature metadata.
func (in *Insights) FeatureMetadata() *metadata.FeatureMetadata {
	if in == nil {
		return nil
	}
	return in.featureMetadata.Copy()
}

func (in *Insights) FeatureRanges() []FeatureRange {
	if in == nil {
		return nil
	}
	return slices.Clone(in.featureRanges)
}

// Categoricals returns the categorical encodings of the test dataset.
func (in *Insights) Categoricals() *categorical.Result {
	if in == nil {
		return nil
	}
	return in.categorical
}

// PredictOutput returns the cached point forecasts or nil without a model.
func (in *Insights) PredictOutput() []float64 {
	if in == nil {
		return nil
	}
	return slices.Clone(in.predictions.Predict)
}

// QuantilePredictOutput returns the cached quantile forecasts or nil when none were computed.
func (in *Insights) QuantilePredictOutput() [][]float64 {
	if in == nil || in.predictions.Quantiles == nil {
		return nil
	}
	res := make([][]float64, len(in.predictions.Quantiles))
	for i, row := range in.predictions.Quantiles {
		res[i] = slices.Clone(row)
	}
	return res
}

// TimeSeries returns one cohort per time series of the test dataset.
func (in *Insights) TimeSeries() []*cohort.Cohort {
	if in == nil {
		return nil
	}
	return slices.Clone(in.timeSeries)
}
