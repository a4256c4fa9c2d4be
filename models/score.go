package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scores tracks the fit scores of a series
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var mse, mape float64
	pred := make([]float64, 0, len(predicted))
	act := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
		if actual[i] != 0 {
			mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		}
		pred = append(pred, predicted[i])
		act = append(act, actual[i])
	}
	if len(actual) > 0 {
		mse /= float64(len(actual))
		mape /= float64(len(actual))
	}

	// a constant series is perfectly explained
	r2 := stat.RSquaredFrom(pred, act, nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}

	return &Scores{
		MSE:  mse,
		MAPE: mape,
		R2:   r2,
	}, nil
}
