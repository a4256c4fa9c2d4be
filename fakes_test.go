package insights

import (
	"errors"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/go-gota/gota/series"
)

var (
	errFakePredict   = errors.New("fake predict failure")
	errFakeQuantiles = errors.New("fake quantile failure")
)

type constForecaster struct {
	val float64
}

func (c constForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	res := make([]float64, x.Nrow())
	for i := range res {
		res[i] = c.val
	}
	return res, nil
}

type timedForecaster struct {
	constForecaster
	timeColumn string
}

func (t timedForecaster) TimeColumnName() string {
	return t.timeColumn
}

type quantileForecaster struct {
	constForecaster
}

func (q quantileForecaster) PredictQuantiles(x *dataset.Frame) ([][]float64, error) {
	res := make([][]float64, x.Nrow())
	for i := range res {
		res[i] = []float64{q.val - 1, q.val, q.val + 1}
	}
	return res, nil
}

// countingForecaster records how often it was asked for predictions.
type countingForecaster struct {
	constForecaster
	calls int
}

func (c *countingForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	c.calls++
	return c.constForecaster.Predict(x)
}

type failingForecaster struct{}

func (failingForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	return nil, errFakePredict
}

type panickingForecaster struct{}

func (panickingForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	panic("index out of range")
}

// panicAfterForecaster behaves until it has served after predictions.
type panicAfterForecaster struct {
	constForecaster
	after int
	calls int
}

func (p *panicAfterForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	p.calls++
	if p.calls > p.after {
		panic("model state exhausted")
	}
	return p.constForecaster.Predict(x)
}

type failingQuantileForecaster struct {
	constForecaster
}

func (failingQuantileForecaster) PredictQuantiles(x *dataset.Frame) ([][]float64, error) {
	return nil, errFakeQuantiles
}

type panickingQuantileForecaster struct {
	constForecaster
}

func (panickingQuantileForecaster) PredictQuantiles(x *dataset.Frame) ([][]float64, error) {
	panic("quantile level out of range")
}

// mutatingForecaster adds a column to its input.
type mutatingForecaster struct{}

func (mutatingForecaster) Predict(x *dataset.Frame) ([]float64, error) {
	if err := x.Set(series.New(make([]float64, x.Nrow()), series.Float, "leak")); err != nil {
		return nil, err
	}
	return make([]float64, x.Nrow()), nil
}

// unserializableSerializer cannot be encoded as json.
type unserializableSerializer struct{}

func (unserializableSerializer) MarshalJSON() ([]byte, error) {
	return nil, errors.New("not serializable")
}

func (unserializableSerializer) Save(model models.Forecaster, dir string) error {
	return nil
}

func (unserializableSerializer) Load(dir string) (models.Forecaster, error) {
	return nil, nil
}
