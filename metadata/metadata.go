// Package metadata declares the roles of dataset columns such as categorical, time,
// time series identifier, identity and dropped features.
package metadata

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownFeature     = errors.New("feature does not exist in dataset")
	ErrDroppedRoleFeature = errors.New("feature with a declared role is also dropped")
)

// FeatureMetadata identifies the different kinds of features of a train/test dataset. An empty
// string or nil slice means the role was not declared.
type FeatureMetadata struct {
	IdentityFeatureName     string   `json:"identity_feature_name" yaml:"identity_feature_name"`
	DatetimeFeatures        []string `json:"datetime_features" yaml:"datetime_features"`
	TimeSeriesIDColumnNames []string `json:"time_series_id_column_names" yaml:"time_series_id_column_names"`
	CategoricalFeatures     []string `json:"categorical_features" yaml:"categorical_features"`
	DroppedFeatures         []string `json:"dropped_features" yaml:"dropped_features"`
	TimeColumnName          string   `json:"time_column_name" yaml:"time_column_name"`
}

// Copy returns a deep copy of the metadata.
func (fm *FeatureMetadata) Copy() *FeatureMetadata {
	if fm == nil {
		return nil
	}
	return &FeatureMetadata{
		IdentityFeatureName:     fm.IdentityFeatureName,
		DatetimeFeatures:        slices.Clone(fm.DatetimeFeatures),
		TimeSeriesIDColumnNames: slices.Clone(fm.TimeSeriesIDColumnNames),
		CategoricalFeatures:     slices.Clone(fm.CategoricalFeatures),
		DroppedFeatures:         slices.Clone(fm.DroppedFeatures),
		TimeColumnName:          fm.TimeColumnName,
	}
}

// IsCategorical reports whether the column was declared categorical.
func (fm *FeatureMetadata) IsCategorical(col string) bool {
	if fm == nil {
		return false
	}
	return slices.Contains(fm.CategoricalFeatures, col)
}

// Validate checks that every column with a declared role exists in featureNames and that the
// identity, time and time series identifier columns are not dropped.
func (fm *FeatureMetadata) Validate(featureNames []string) error {
	if fm == nil {
		return nil
	}

	known := make(map[string]struct{}, len(featureNames))
	for _, name := range featureNames {
		known[name] = struct{}{}
	}
	missing := func(role string, cols ...string) error {
		var absent []string
		for _, col := range cols {
			if col == "" {
				continue
			}
			if _, exists := known[col]; !exists {
				absent = append(absent, col)
			}
		}
		if len(absent) == 0 {
			return nil
		}
		return fmt.Errorf("the %s %s not present in the dataset: [%s], %w",
			role, pluralVerb(len(absent)), strings.Join(absent, ", "), ErrUnknownFeature)
	}

	checks := []struct {
		role string
		cols []string
	}{
		{"identity feature", []string{fm.IdentityFeatureName}},
		{"time column", []string{fm.TimeColumnName}},
		{"time series id columns", fm.TimeSeriesIDColumnNames},
		{"datetime features", fm.DatetimeFeatures},
		{"categorical features", fm.CategoricalFeatures},
		{"dropped features", fm.DroppedFeatures},
	}
	for _, c := range checks {
		if err := missing(c.role, c.cols...); err != nil {
			return err
		}
	}

	roles := append([]string{fm.IdentityFeatureName, fm.TimeColumnName}, fm.TimeSeriesIDColumnNames...)
	for _, col := range roles {
		if col != "" && slices.Contains(fm.DroppedFeatures, col) {
			return fmt.Errorf("%q, %w", col, ErrDroppedRoleFeature)
		}
	}
	return nil
}

// ToMap returns the metadata keyed by its serialized field names where undeclared roles are nil.
func (fm *FeatureMetadata) ToMap() map[string]any {
	if fm == nil {
		return nil
	}
	str := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	list := func(s []string) any {
		if s == nil {
			return nil
		}
		return slices.Clone(s)
	}
	return map[string]any{
		"identity_feature_name":       str(fm.IdentityFeatureName),
		"datetime_features":           list(fm.DatetimeFeatures),
		"time_series_id_column_names": list(fm.TimeSeriesIDColumnNames),
		"categorical_features":        list(fm.CategoricalFeatures),
		"dropped_features":            list(fm.DroppedFeatures),
		"time_column_name":            str(fm.TimeColumnName),
	}
}

func pluralVerb(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}
