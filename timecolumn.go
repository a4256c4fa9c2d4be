package insights

import (
	"slices"

	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
)

// modelTimeColumn returns the time column expected by the model or an empty string.
func modelTimeColumn(model models.Forecaster) string {
	namer, ok := model.(models.TimeColumnNamer)
	if !ok {
		return ""
	}
	return namer.TimeColumnName()
}

// resolveTimeColumn makes sure a time column is available from the metadata or the model. A
// time column known only to the model is written into fm.
func resolveTimeColumn(fm *metadata.FeatureMetadata, featureNames []string, model models.Forecaster) error {
	fmTimeColumn := fm.TimeColumnName
	modelColumn := modelTimeColumn(model)

	if modelColumn == "" {
		if fmTimeColumn != "" {
			return nil
		}
		return newValidationError(nil,
			"There was no time column name in feature metadata. "+
				"A time column is required for forecasting.")
	}

	if fmTimeColumn == "" {
		if !slices.Contains(featureNames, modelColumn) {
			return newValidationError(nil,
				"The provided model expects a time column named %s that is not present in the provided dataset.",
				modelColumn)
		}
		fm.TimeColumnName = modelColumn
		return nil
	}

	if fmTimeColumn != modelColumn {
		return newValidationError(nil,
			"The provided time column name %s does not match the model's expected time column name %s.",
			fmTimeColumn, modelColumn)
	}
	return nil
}
