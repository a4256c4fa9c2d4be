package insights

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataPredictionSource(t *testing.T) {
	train, test := setupSales(t)
	model := &countingForecaster{constForecaster: constForecaster{val: 4}}

	in, err := New(model, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)
	afterNew := model.calls

	testData := map[string]struct {
		source        string
		expectedCalls int
		err           error
	}{
		"recompute": {PredictionSourceRecompute, 1, nil},
		"cache":     {PredictionSourceCache, 0, nil},
		"unknown":   {"disk", 0, ErrUnknownPredictionSource},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			before := model.calls
			data, err := in.GetDataFrom(td.source)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expectedCalls, model.calls-before)
			assert.Equal(t, []float64{4, 4, 4, 4, 4}, data.Dataset.PredictedY)
		})
	}

	// construction predicts once for validation and once for the cache
	assert.Equal(t, 2, afterNew)
}

func TestGetDataQuantiles(t *testing.T) {
	train, test := setupSales(t)
	in, err := New(quantileForecaster{constForecaster{val: 4}}, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)

	for _, source := range []string{PredictionSourceRecompute, PredictionSourceCache} {
		data, err := in.GetDataFrom(source)
		require.Nil(t, err)
		require.Len(t, data.Dataset.PredQuantiles, test.Nrow())
		assert.Equal(t, []float64{3, 4, 5}, data.Dataset.PredQuantiles[0])
	}
}

func TestGetDataTrueY(t *testing.T) {
	train, test := setupSales(t)
	noTarget, err := test.Drop("sales")
	require.Nil(t, err)

	in, err := New(constForecaster{val: 6}, train, noTarget, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)
	assert.False(t, in.IsTrueYPresent())

	data, err := in.GetData()
	require.Nil(t, err)
	assert.False(t, data.Dataset.IsForecastingTrueY)
	assert.Equal(t, data.Dataset.PredictedY, data.Dataset.TrueY)

	// without a model or target there are no true values
	in, err = New(nil, train, noTarget, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)
	data, err = in.GetData()
	require.Nil(t, err)
	assert.Nil(t, data.Dataset.TrueY)
}

// numericFrames builds train and test frames with nCols float features and a float target "y".
func numericFrames(t *testing.T, nRows, nCols int, index []string) (*dataset.Frame, *dataset.Frame) {
	vals := make([]float64, nRows)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	cols := make([]series.Series, 0, nCols+1)
	for i := range nCols {
		cols = append(cols, series.New(vals, series.Float, fmt.Sprintf("x%d", i)))
	}
	cols = append(cols, series.New(vals, series.Float, "y"))
	f, err := dataset.New(cols...)
	require.Nil(t, err)
	if index != nil {
		f, err = f.WithIndex(index)
		require.Nil(t, err)
	}
	return f, f.Copy()
}

func dailyIndex(n int) []string {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	index := make([]string, n)
	for i := range index {
		index[i] = start.AddDate(0, 0, i).Format(time.DateOnly)
	}
	return index
}

func TestGetDataErrors(t *testing.T) {
	testData := map[string]struct {
		nRows int
		nCols int
		index []string
		opt   *Options
		msg   string
	}{
		"no time index": {
			nRows: 2,
			nCols: 1,
			msg:   "No time_column_name was provided via feature_metadata.",
		},
		"unparsable time index": {
			nRows: 2,
			nCols: 1,
			index: []string{"yesterday", "today"},
			msg:   "No time_column_name was provided via feature_metadata.",
		},
		"too many features": {
			nRows: 2,
			nCols: MaxDashboardFeatures + 1,
			index: dailyIndex(2),
			msg:   fmt.Sprintf("Exceeds maximum number of features for visualization (%d).", MaxDashboardFeatures),
		},
		"too many rows": {
			nRows: MaxDashboardRows + 1,
			nCols: 1,
			index: dailyIndex(MaxDashboardRows + 1),
			opt:   &Options{MaximumRowsForTest: MaxDashboardRows + 1},
			msg:   fmt.Sprintf("Exceeds maximum number of rows for visualization (%d)", MaxDashboardRows),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			train, test := numericFrames(t, td.nRows, td.nCols, td.index)
			in, err := New(constForecaster{val: 1}, train, test, "y", td.opt)
			require.Nil(t, err)

			_, err = in.GetData()
			assert.ErrorIs(t, err, ErrDashboardData)

			var derr *DashboardDataError
			require.True(t, errors.As(err, &derr))
			assert.Contains(t, derr.Msg, td.msg)
		})
	}
}

func TestGetDataDateIndex(t *testing.T) {
	testData := map[string]struct {
		index    []string
		expected []string
	}{
		"dates": {
			index:    []string{"2024-03-01", "2024-03-02"},
			expected: []string{"2024-03-01", "2024-03-02"},
		},
		"negative offset late evening": {
			index:    []string{"2024-03-01T22:00:00-05:00", "2024-03-02T22:00:00-05:00"},
			expected: []string{"2024-03-01", "2024-03-02"},
		},
		"positive offset early morning": {
			index:    []string{"2024-03-01T01:00:00+09:00", "2024-03-02T01:00:00+09:00"},
			expected: []string{"2024-03-01", "2024-03-02"},
		},
		"datetime": {
			index:    []string{"2024-03-01 23:59:59", "2024-03-02 00:00:00"},
			expected: []string{"2024-03-01", "2024-03-02"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			train, test := numericFrames(t, 2, 1, td.index)
			in, err := New(constForecaster{val: 1}, train, test, "y", nil)
			require.Nil(t, err)

			data, err := in.GetData()
			require.Nil(t, err)
			assert.Equal(t, td.expected, data.Dataset.Index)
		})
	}
}

func TestGetDataPredictError(t *testing.T) {
	train, test := setupSales(t)
	in, err := New(constForecaster{val: 1}, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)

	in.model = failingForecaster{}
	_, err = in.GetData()
	assert.ErrorIs(t, err, ErrDashboardData)
	assert.ErrorIs(t, err, errFakePredict)

	// cached predictions do not invoke the model
	_, err = in.GetDataFrom(PredictionSourceCache)
	assert.Nil(t, err)
}

func TestGetDataModelPanic(t *testing.T) {
	train, test := setupSales(t)

	// construction predicts twice: once while validating and once for the cache
	model := &panicAfterForecaster{constForecaster: constForecaster{val: 1}, after: 2}
	in, err := New(model, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)
	assert.Equal(t, 2, model.calls)

	_, err = in.GetData()
	assert.ErrorIs(t, err, ErrDashboardData)
	assert.ErrorIs(t, err, errPredictPanic)
	assert.Equal(t, 3, model.calls)
}

func TestGetDataQuantileError(t *testing.T) {
	train, test := setupSales(t)

	testData := map[string]struct {
		model models.Forecaster
		err   error
	}{
		"error": {
			model: failingQuantileForecaster{constForecaster{val: 4}},
			err:   errFakeQuantiles,
		},
		"panic": {
			model: panickingQuantileForecaster{constForecaster{val: 4}},
			err:   errPredictPanic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			in, err := New(quantileForecaster{constForecaster{val: 4}}, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
			require.Nil(t, err)

			in.model = td.model
			_, err = in.GetData()
			assert.ErrorIs(t, err, ErrDashboardData)
			assert.ErrorIs(t, err, td.err)

			var derr *DashboardDataError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, "Model does not support predict_quantiles method for given dataset type.", derr.Msg)

			data, err := in.GetDataFrom(PredictionSourceCache)
			require.Nil(t, err)
			assert.Len(t, data.Dataset.PredQuantiles, test.Nrow())
		})
	}
}

func TestDashboardDatasetJSON(t *testing.T) {
	train, test := setupSales(t)
	in, err := New(constForecaster{val: 1}, train, test, "sales", &Options{FeatureMetadata: salesMetadata()})
	require.Nil(t, err)

	data, err := in.GetData()
	require.Nil(t, err)
	bytes, err := json.Marshal(data)
	require.Nil(t, err)

	var decoded map[string]map[string]any
	require.Nil(t, json.Unmarshal(bytes, &decoded))
	ds := decoded["dataset"]
	for _, key := range []string{
		"task_type", "categorical_features", "is_forecasting_true_y", "class_names", "feature_metadata",
		"predicted_y", "features", "index", "true_y", "feature_names", "target_column",
	} {
		assert.Contains(t, ds, key)
	}
	assert.NotContains(t, ds, "pred_quantiles")
	assert.Equal(t, "forecasting", ds["task_type"])
}
