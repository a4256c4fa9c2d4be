package models

import (
	"errors"
)

var (
	ErrNoOptions                = errors.New("no initialized model options")
	ErrTargetLenMismatch        = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix         = errors.New("no training matrix")
	ErrNoTargetMatrix           = errors.New("no target matrix")
	ErrNoDesignMatrix           = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch       = errors.New("number of features does not match number of model coefficients")
	ErrUnderdetermined          = errors.New("fewer observations than features")
	ErrUninitializedForecaster  = errors.New("uninitialized forecaster")
	ErrUntrainedForecaster      = errors.New("forecaster has not been trained yet")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing NaNs")
	ErrNoTimeColumn             = errors.New("no time column configured")
	ErrMissingColumn            = errors.New("dataset is missing a column required by the forecaster")
	ErrInvalidQuantile          = errors.New("quantile must be within (0, 1)")
	ErrInvalidOrder             = errors.New("fourier order must be positive")
	ErrResLenMismatch           = errors.New("predicted and actual have different lengths")
	ErrUnsupportedModel         = errors.New("model type is not supported by serializer")
	ErrUnknownFeature           = errors.New("unknown model feature")
)
