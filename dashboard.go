package insights

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/aouyang1/go-forecast-insights/timedataset"
)

const (
	MaxDashboardRows     = 100000
	MaxDashboardFeatures = 1000
)

// DashboardDataset is the payload rendered by the forecasting dashboard.
type DashboardDataset struct {
	TaskType            string         `json:"task_type"`
	CategoricalFeatures []string       `json:"categorical_features"`
	IsForecastingTrueY  bool           `json:"is_forecasting_true_y"`
	ClassNames          []string       `json:"class_names"`
	FeatureMetadata     map[string]any `json:"feature_metadata"`
	PredictedY          []float64      `json:"predicted_y"`
	Features            [][]any        `json:"features"`
	Index               []string       `json:"index"`
	TrueY               []float64      `json:"true_y"`
	FeatureNames        []string       `json:"feature_names"`
	TargetColumn        string         `json:"target_column"`
	PredQuantiles       [][]float64    `json:"pred_quantiles,omitempty"`
}

// Data wraps the dashboard dataset.
type Data struct {
	Dataset *DashboardDataset `json:"dataset"`
}

// GetData builds the dashboard payload using the prediction source of the options.
func (in *Insights) GetData() (*Data, error) {
	if in == nil {
		return nil, ErrUninitializedInsights
	}
	return in.GetDataFrom(in.opt.PredictionSource)
}

// GetDataFrom builds the dashboard payload. PredictionSourceRecompute invokes the model on the
// test dataset while PredictionSourceCache reuses the predictions computed at construction.
func (in *Insights) GetDataFrom(source string) (*Data, error) {
	if in == nil {
		return nil, ErrUninitializedInsights
	}
	if source != PredictionSourceRecompute && source != PredictionSourceCache {
		return nil, fmt.Errorf("%q, %w", source, ErrUnknownPredictionSource)
	}

	ds, err := in.dashboardDataset(source)
	if err != nil {
		return nil, err
	}
	return &Data{Dataset: ds}, nil
}

func (in *Insights) dashboardDataset(source string) (*DashboardDataset, error) {
	fm := in.featureMetadata
	ds := &DashboardDataset{
		TaskType:            in.taskType,
		CategoricalFeatures: []string{},
		IsForecastingTrueY:  in.isTrueYPresent,
		ClassNames:          in.Classes(),
		FeatureMetadata:     fm.ToMap(),
		TargetColumn:        in.targetColumn,
	}
	if fm.CategoricalFeatures != nil {
		ds.CategoricalFeatures = append(ds.CategoricalFeatures, fm.CategoricalFeatures...)
	}

	x := in.testWithoutTrueY
	features, err := x.Rows()
	if err != nil {
		return nil, newDashboardError(err, "Unsupported dataset type")
	}

	var predictedY []float64
	switch source {
	case PredictionSourceCache:
		predictedY = in.PredictOutput()
	default:
		if in.model != nil {
			predictedY, err = safePredict(in.model, x)
			if err != nil {
				return nil, newDashboardError(err, "Model does not support predict method for given dataset type")
			}
		}
	}
	ds.PredictedY = predictedY

	rowLength := len(features)
	featureLength := len(x.Names())
	rowWidth := featureLength
	if rowLength > 0 {
		rowWidth = len(features[0])
	}
	if rowLength > MaxDashboardRows {
		return nil, newDashboardError(nil, fmt.Sprintf("Exceeds maximum number of rows for visualization (%d)", MaxDashboardRows))
	}
	if featureLength > MaxDashboardFeatures {
		return nil, newDashboardError(nil, fmt.Sprintf(
			"Exceeds maximum number of features for visualization (%d). "+
				"Please regenerate the explanation using fewer features or "+
				"initialize the dashboard without passing a dataset.", MaxDashboardFeatures))
	}
	ds.Features = features

	ds.Index, err = in.dateIndex()
	if err != nil {
		return nil, newDashboardError(err, "No time_column_name was provided via feature_metadata.")
	}

	trueY := predictedY
	if in.isTrueYPresent {
		trueY, err = in.test.Floats(in.targetColumn)
		if err != nil {
			return nil, newDashboardError(err, "Unable to read the target column")
		}
	}
	if trueY != nil && len(trueY) == rowLength {
		ds.TrueY = trueY
	}

	ds.FeatureNames = x.Names()
	if len(ds.FeatureNames) != rowWidth {
		return nil, newDashboardError(nil,
			"Feature vector length mismatch: feature names length differs from local explanations dimension")
	}

	switch source {
	case PredictionSourceCache:
		ds.PredQuantiles = in.QuantilePredictOutput()
	default:
		if qf, ok := in.model.(models.QuantileForecaster); ok {
			ds.PredQuantiles, err = safePredictQuantiles(qf, x)
			if err != nil {
				return nil, newDashboardError(err, "Model does not support predict_quantiles method for given dataset type.")
			}
		}
	}
	return ds, nil
}

var errNoTimeIndex = errors.New("test data has neither a row index nor a time column")

// dateIndex formats the row index of the test dataset, or its time column when no index was
// attached, as YYYY-MM-DD dates.
func (in *Insights) dateIndex() ([]string, error) {
	var labels []any
	switch {
	case in.test.HasIndex():
		for _, label := range in.test.Index() {
			labels = append(labels, label)
		}
	case in.featureMetadata.TimeColumnName != "" && in.test.Has(in.featureMetadata.TimeColumnName):
		vals, err := in.test.Values(in.featureMetadata.TimeColumnName)
		if err != nil {
			return nil, err
		}
		labels = vals
	default:
		return nil, errNoTimeIndex
	}

	index := make([]string, len(labels))
	for i, label := range labels {
		date, err := dateLabel(label)
		if err != nil {
			return nil, fmt.Errorf("unable to parse time at row %d, %w", i, err)
		}
		index[i] = date
	}
	return index, nil
}

// dateLabel keeps the calendar date written in a string label so zone offsets do not shift it.
func dateLabel(label any) (string, error) {
	if s, ok := label.(string); ok && len(s) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return s[:len(time.DateOnly)], nil
		}
	}
	t, err := timedataset.ParseTime(label)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}
