// Package models defines the model capabilities consumed by insights and a reference seasonal
// forecaster built on ordinary least squares.
package models

import (
	"github.com/aouyang1/go-forecast-insights/dataset"
	"gonum.org/v1/gonum/mat"
)

// Forecaster produces a point forecast for every row of a dataset. Implementations must not
// modify the columns of the input dataset.
type Forecaster interface {
	Predict(x *dataset.Frame) ([]float64, error)
}

// QuantileForecaster additionally produces, for every row, the forecast at each of its quantiles.
type QuantileForecaster interface {
	Forecaster
	PredictQuantiles(x *dataset.Frame) ([][]float64, error)
}

// TimeColumnNamer is implemented by forecasters expecting a specific time column.
type TimeColumnNamer interface {
	TimeColumnName() string
}

// Serializer persists a forecaster into a directory and restores it from the same directory.
type Serializer interface {
	Save(model Forecaster, dir string) error
	Load(dir string) (Forecaster, error)
}

// Regressor is a linear model fit on a design matrix.
type Regressor interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}
