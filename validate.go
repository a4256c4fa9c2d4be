package insights

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/goccy/go-json"
)

// validationInput holds everything checked before any derived state is computed.
type validationInput struct {
	model              models.Forecaster
	train              *dataset.Frame
	test               *dataset.Frame
	targetColumn       string
	serializer         models.Serializer
	maximumRowsForTest int
	featureMetadata    *metadata.FeatureMetadata
	metadataProvided   bool
	isTrueYPresent     bool
	logger             *slog.Logger
}

// validateInputs applies the construction rules in order and returns the first violation as a
// UserConfigValidationError. The time column of the feature metadata may be filled in from the
// model.
func validateInputs(in validationInput) error {
	if in.model == nil {
		in.logger.Warn("INVALID-MODEL-WARNING: No valid model is supplied. " +
			"The explanations, error analysis and counterfactuals may not work")
		if in.serializer != nil {
			return newValidationError(nil, "No valid model is specified but model serializer provided.")
		}
	}

	if in.serializer != nil {
		if _, err := json.Marshal(in.serializer); err != nil {
			return newValidationError(err, "The serializer should be serializable via json")
		}
	}

	if in.train == nil || in.test == nil {
		return newValidationError(nil,
			"Unsupported data type for either train or test. "+
				"Expecting a dataset frame for train and test.")
	}
	if err := validateDatasets(in); err != nil {
		return err
	}

	if in.model != nil {
		if err := validatePredict(in); err != nil {
			return err
		}
	}

	if in.metadataProvided {
		featureNames := in.train.Names()
		if err := resolveTimeColumn(in.featureMetadata, featureNames, in.model); err != nil {
			return err
		}
		if err := in.featureMetadata.Validate(featureNames); err != nil {
			return newValidationError(err, "Invalid feature metadata")
		}
	}
	return nil
}

func validateDatasets(in validationInput) error {
	train, test, target := in.train, in.test, in.targetColumn

	if train.Nrow() <= 0 || test.Nrow() <= 0 {
		return newValidationError(nil,
			"Either of the train/test are empty. "+
				"Please provide non-empty dataframes for train and test sets.")
	}
	if test.Nrow() > in.maximumRowsForTest {
		return newValidationError(nil,
			"The test data has %d rows, but limit is set to %d rows. "+
				"Please resample the test data or adjust maximum_rows_for_test",
			test.Nrow(), in.maximumRowsForTest)
	}

	if in.isTrueYPresent && !sameColumns(train.Names(), test.Names()) {
		return newValidationError(nil, "The features in train and test data do not match")
	}

	if !train.Has(target) {
		return newValidationError(nil, "Target name %s not present in train data", target)
	}

	categoricalFeatures := in.featureMetadata.CategoricalFeatures
	if len(categoricalFeatures) > 0 {
		if slices.Contains(categoricalFeatures, target) {
			return newValidationError(nil, "Found target name %s in categorical feature list", target)
		}

		var missing []string
		for _, col := range categoricalFeatures {
			if !train.Has(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return newValidationError(nil,
				"Feature names in categorical_features do not exist in train data: %s", listString(missing))
		}

		for _, col := range categoricalFeatures {
			if _, err := train.Unique(col); err != nil {
				return newValidationError(err,
					"Error finding unique values in column %s. Please check your train data.", col)
			}
			if _, err := test.Unique(col); err != nil {
				return newValidationError(err,
					"Error finding unique values in column %s. Please check your test data.", col)
			}
		}
	}

	excluded := []string{target, in.featureMetadata.TimeColumnName, modelTimeColumn(in.model)}
	var stringFeatures []string
	for _, col := range train.Names() {
		if slices.Contains(excluded, col) || train.IsNumeric(col) {
			continue
		}
		if !slices.Contains(categoricalFeatures, col) {
			stringFeatures = append(stringFeatures, col)
		}
	}
	if len(stringFeatures) > 0 {
		slices.Sort(stringFeatures)
		return newValidationError(nil,
			"The following string features were not identified as categorical features: %s",
			listString(stringFeatures))
	}
	return nil
}

// validatePredict runs the model on the first test row and checks its columns are untouched.
func validatePredict(in validationInput) error {
	small, err := in.test.Head(1)
	if err == nil && in.isTrueYPresent {
		small, err = small.Drop(in.targetColumn)
	}
	if err != nil {
		return newValidationError(err, "Unable to select a test row for prediction")
	}

	before := small.Names()
	if _, err := safePredict(in.model, small); err != nil {
		return newValidationError(err, "The model passed cannot be used for getting predictions via predict()")
	}
	if !slices.Equal(before, small.Names()) {
		return newValidationError(nil,
			"Calling model predict function modifies input dataset features. "+
				"Please check if predict function is defined correctly.")
	}
	return nil
}

var errPredictPanic = errors.New("model panicked during prediction")

// safePredict converts a panic raised by a model into an error.
func safePredict(model models.Forecaster, x *dataset.Frame) (pred []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v, %w", r, errPredictPanic)
		}
	}()
	return model.Predict(x)
}

// safePredictQuantiles converts a panic raised by a quantile model into an error.
func safePredictQuantiles(model models.QuantileForecaster, x *dataset.Frame) (quantiles [][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v, %w", r, errPredictPanic)
		}
	}()
	return model.PredictQuantiles(x)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

func listString(vals []string) string {
	return "[" + strings.Join(vals, ", ") + "]"
}
