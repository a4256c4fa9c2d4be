package insights

import (
	"fmt"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/models"
)

// Predictions are the model outputs cached for the test dataset without its target column.
type Predictions struct {
	Predict   []float64
	Quantiles [][]float64
}

// predictTest runs the model once on x. Quantile forecasts are computed for quantile forecasters
// or requested from every model under QuantilePolicyAlways. A nil model has no predictions.
func predictTest(model models.Forecaster, x *dataset.Frame, policy string) (Predictions, error) {
	if model == nil {
		return Predictions{}, nil
	}

	pred, err := safePredict(model, x)
	if err != nil {
		return Predictions{}, fmt.Errorf("unable to predict test data, %w", err)
	}
	res := Predictions{Predict: pred}

	qf, ok := model.(models.QuantileForecaster)
	switch {
	case ok:
	case policy == QuantilePolicyAlways:
		return Predictions{}, fmt.Errorf("got %T, %w", model, ErrQuantileUnsupported)
	default:
		return res, nil
	}

	quantiles, err := safePredictQuantiles(qf, x)
	if err != nil {
		return Predictions{}, fmt.Errorf("unable to predict test data quantiles, %w", err)
	}
	res.Quantiles = quantiles
	return res, nil
}
